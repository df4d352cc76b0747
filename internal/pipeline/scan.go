package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go-shader-reflect/internal/model"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ------------------- Stage Scan -------------------

// ScanStages lists dir and groups its shader stage files into pipelines.
// An empty directory yields an empty map.
func ScanStages(dir string) (map[string]model.Pipeline, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return ClassifyStages(dir, names), nil
}

// ClassifyStages groups file names found in dir by pipeline name. Files that
// are not shader stages are skipped. Stages inside a pipeline are ordered
// vertex, fragment, geometry; files of the same kind keep listing order.
func ClassifyStages(dir string, names []string) map[string]model.Pipeline {
	pipelines := make(map[string]model.Pipeline)
	for _, name := range names {
		stage, ok := model.NewStageFile(filepath.Join(dir, name))
		if !ok {
			continue
		}
		p := pipelines[stage.Pipeline]
		p.Name = stage.Pipeline
		p.Stages = append(p.Stages, stage)
		pipelines[stage.Pipeline] = p
	}

	for _, p := range pipelines {
		slices.SortStableFunc(p.Stages, func(a, b model.StageFile) bool {
			return a.Kind.Priority() < b.Kind.Priority()
		})
	}
	return pipelines
}

// PipelineNames returns the pipeline names in processing order.
func PipelineNames(pipelines map[string]model.Pipeline) []string {
	names := maps.Keys(pipelines)
	slices.Sort(names)
	return names
}
