package pipeline

import (
	"log"
	"time"

	"go-shader-reflect/internal/model"

	"github.com/google/uuid"
)

// Recorder persists run progress. The sqlite store implements it; a nil
// Recorder keeps the run in memory only.
type Recorder interface {
	StartRun(runID string, spec model.RunSpec, startedAt time.Time) error
	RecordPipeline(runID string, result model.PipelineResult) error
	RecordError(runID, pipeline, phase string, err error) error
	FinishRun(summary *model.RunSummary) error
}

// RunTracker collects per-pipeline outcomes for one run
type RunTracker struct {
	Summary  *model.RunSummary
	Recorder Recorder
}

// NewRunTracker starts tracking a run under a fresh run ID.
func NewRunTracker(spec model.RunSpec, recorder Recorder) *RunTracker {
	rt := &RunTracker{
		Recorder: recorder,
		Summary: &model.RunSummary{
			RunID:     uuid.New().String(),
			Spec:      spec,
			StartedAt: time.Now().UTC(),
		},
	}
	if rt.Recorder != nil {
		if err := rt.Recorder.StartRun(rt.Summary.RunID, spec, rt.Summary.StartedAt); err != nil {
			log.Printf("failed to record run %s: %v", rt.Summary.RunID, err)
		}
	}
	return rt
}

// StartPipeline marks the start of processing for p.
func (rt *RunTracker) StartPipeline(p model.Pipeline) model.PipelineResult {
	return model.PipelineResult{
		Pipeline:  p.Name,
		Stages:    p.StagePaths(),
		StartedAt: time.Now().UTC(),
	}
}

// EndPipeline classifies the outcome of a pipeline and records it.
func (rt *RunTracker) EndPipeline(result model.PipelineResult, view *model.AggregatedBindingView, err error) model.PipelineResult {
	result.FinishedAt = time.Now().UTC()
	switch {
	case err != nil:
		result.Status = model.StatusFailed
		result.Phase = phaseOf(err)
		result.Error = err.Error()
	case view == nil || len(view.Bindings) == 0:
		result.Status = model.StatusSkipped
		result.View = view
	default:
		result.Status = model.StatusSucceeded
		result.View = view
	}

	rt.Summary.Pipelines = append(rt.Summary.Pipelines, result)

	if rt.Recorder != nil {
		if rerr := rt.Recorder.RecordPipeline(rt.Summary.RunID, result); rerr != nil {
			log.Printf("failed to record pipeline %s: %v", result.Pipeline, rerr)
		}
		if err != nil {
			if rerr := rt.Recorder.RecordError(rt.Summary.RunID, result.Pipeline, result.Phase, err); rerr != nil {
				log.Printf("failed to record error for pipeline %s: %v", result.Pipeline, rerr)
			}
		}
	}
	return result
}

// Finish closes the run. aborted is set when a failure stopped the run early.
func (rt *RunTracker) Finish(aborted bool) *model.RunSummary {
	rt.Summary.FinishedAt = time.Now().UTC()
	rt.Summary.Aborted = aborted
	if rt.Recorder != nil {
		if err := rt.Recorder.FinishRun(rt.Summary); err != nil {
			log.Printf("failed to finish run %s: %v", rt.Summary.RunID, err)
		}
	}
	return rt.Summary
}
