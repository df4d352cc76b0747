package model

import (
	"path/filepath"
	"strings"
)

// StageKind identifies the shader stage a source file compiles to
type StageKind string

const (
	StageVertex   StageKind = "vertex"
	StageFragment StageKind = "fragment"
	StageGeometry StageKind = "geometry"
)

// stageExtensions maps recognized source extensions to their stage kind
var stageExtensions = map[string]StageKind{
	".vert": StageVertex,
	".frag": StageFragment,
	".geom": StageGeometry,
}

// StageKindForExt returns the stage kind for a file extension (with the dot).
func StageKindForExt(ext string) (StageKind, bool) {
	kind, ok := stageExtensions[ext]
	return kind, ok
}

// Priority orders stages inside a pipeline: vertex, fragment, geometry.
func (k StageKind) Priority() int {
	switch k {
	case StageVertex:
		return 0
	case StageFragment:
		return 1
	case StageGeometry:
		return 2
	default:
		return 3
	}
}

// StageFile is one shader stage source found during a scan
type StageFile struct {
	Path     string    `json:"path"`
	Kind     StageKind `json:"kind"`
	Pipeline string    `json:"pipeline"`
}

// NewStageFile classifies path by its extension. ok is false for files that
// are not shader stages, including dotfiles such as ".vert" that have no
// pipeline name.
func NewStageFile(path string) (StageFile, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if strings.Trim(name, ".") == "" {
		return StageFile{}, false
	}
	kind, ok := StageKindForExt(ext)
	if !ok {
		return StageFile{}, false
	}
	return StageFile{
		Path:     path,
		Kind:     kind,
		Pipeline: name,
	}, true
}

// Base returns the file name without its directory (e.g. "basic.vert").
func (s StageFile) Base() string {
	return filepath.Base(s.Path)
}

// Pipeline groups the stages sharing a base name
type Pipeline struct {
	Name   string      `json:"name"`
	Stages []StageFile `json:"stages"`
}

// StagePaths lists the source paths of the pipeline's stages in order.
func (p Pipeline) StagePaths() []string {
	paths := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		paths[i] = s.Path
	}
	return paths
}

// CompiledArtifact is the SPIR-V binary produced for one stage
type CompiledArtifact struct {
	Stage StageFile `json:"stage"`
	Path  string    `json:"path"`
}
