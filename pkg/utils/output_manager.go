package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputManager derives where compiled artifacts and reflection reports go
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager rooted at baseOutputDir
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// SpirvPath returns the artifact path for a stage source: <dir>/<basename>.spv
func (om *OutputManager) SpirvPath(sourcePath string) string {
	return om.outputPath(sourcePath, ".spv")
}

// ReflectPath returns the reflection report path for a stage source: <dir>/<basename>.yaml
func (om *OutputManager) ReflectPath(sourcePath string) string {
	return om.outputPath(sourcePath, ".yaml")
}

func (om *OutputManager) outputPath(sourcePath, ext string) string {
	// Only the base name is kept, so sources from different dirs share one obj dir.
	return filepath.Join(om.BaseOutputDir, filepath.Base(sourcePath)+ext)
}

// CheckOutputDir verifies the output directory exists. It is never created here.
func (om *OutputManager) CheckOutputDir() error {
	info, err := os.Stat(om.BaseOutputDir)
	if err != nil {
		return fmt.Errorf("output directory %s: %w", om.BaseOutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", om.BaseOutputDir)
	}
	return nil
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
