package pipeline

import (
	"context"
	"fmt"
	"io"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/pkg/utils"
)

// Runner processes every pipeline found in a shader directory
type Runner struct {
	Spec      model.RunSpec
	Compiler  *Compiler
	Reflector *Reflector
	Exporter  *ExportManager
	Recorder  Recorder

	// Log receives the end-of-run failure summary.
	Log   io.Writer
	Color bool
}

// NewRunner wires the default adapters for spec. Bindings go to out;
// progress goes to out for text output and to log otherwise.
func NewRunner(spec model.RunSpec, runner CommandRunner, out, logw io.Writer) *Runner {
	paths := utils.NewOutputManager(spec.ObjDir)
	exporter := NewExportManager(spec.Format, out)

	compiler := NewCompiler(spec.CompilerBin, runner, paths)
	compiler.Progress = logw
	if exporter.Streams() {
		compiler.Progress = out
	}
	compiler.Color = utils.IsTerminal(compiler.Progress)

	reflector := NewReflector(spec.ReflectorBin, runner, paths)
	reflector.KeepReports = spec.WriteReflection

	return &Runner{
		Spec:      spec,
		Compiler:  compiler,
		Reflector: reflector,
		Exporter:  exporter,
		Log:       logw,
		Color:     utils.IsTerminal(logw),
	}
}

// ------------------- Pipeline Runner -------------------

// Run scans the shader directory and processes pipelines one after another
// in name order. A failing pipeline is recorded and the run moves on, unless
// Spec.FailFast is set, in which case the failure is returned immediately.
// The summary is returned in both cases.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	pipelines, err := ScanStages(r.Spec.ShaderDir)
	if err != nil {
		return nil, err
	}

	tracker := NewRunTracker(r.Spec, r.Recorder)

	for _, name := range PipelineNames(pipelines) {
		if err := ctx.Err(); err != nil {
			return tracker.Finish(true), err
		}

		p := pipelines[name]
		result := tracker.StartPipeline(p)
		view, err := r.processPipeline(ctx, p)
		tracker.EndPipeline(result, view, err)

		if err != nil && r.Spec.FailFast {
			return tracker.Finish(true), err
		}
		if err == nil {
			if xerr := r.Exporter.ExportPipeline(*view); xerr != nil {
				return tracker.Finish(true), fmt.Errorf("failed to write report: %w", xerr)
			}
		}
	}

	summary := tracker.Finish(false)
	if err := r.Exporter.ExportRun(summary); err != nil {
		return summary, fmt.Errorf("failed to write report: %w", err)
	}
	r.reportFailures(summary)
	return summary, nil
}

// processPipeline compiles and reflects every stage, then aggregates.
func (r *Runner) processPipeline(ctx context.Context, p model.Pipeline) (*model.AggregatedBindingView, error) {
	artifacts := make([]model.CompiledArtifact, 0, len(p.Stages))
	for _, stage := range p.Stages {
		artifact, err := r.Compiler.Compile(ctx, stage)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}

	reports := make([]model.ReflectionReport, 0, len(artifacts))
	for _, artifact := range artifacts {
		report, err := r.Reflector.Reflect(ctx, artifact)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	view, err := Aggregate(p.Name, r.Spec.Mode, reports)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// reportFailures prints one line per failed pipeline after the run.
func (r *Runner) reportFailures(summary *model.RunSummary) {
	failed := summary.Failed()
	if r.Log == nil || len(failed) == 0 {
		return
	}
	fmt.Fprintln(r.Log, utils.Decorate(
		fmt.Sprintf("❌ %d of %d pipelines failed:", len(failed), len(summary.Pipelines)),
		utils.ColorRed, r.Color))
	for _, f := range failed {
		fmt.Fprintf(r.Log, "  %s [%s]: %s\n", f.Pipeline, f.Phase, f.Error)
	}
}
