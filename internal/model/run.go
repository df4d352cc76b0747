package model

import "time"

// OutputFormat selects how binding layouts are reported
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// RunSpec is the resolved configuration of a single run
type RunSpec struct {
	ShaderDir       string          `json:"shader_dir"`
	ObjDir          string          `json:"obj_dir"`
	CompilerBin     string          `json:"compiler_bin"`
	ReflectorBin    string          `json:"reflector_bin"`
	Mode            AggregationMode `json:"mode"`
	Format          OutputFormat    `json:"format"`
	FailFast        bool            `json:"fail_fast"`
	WriteReflection bool            `json:"write_reflection"`
	DBPath          string          `json:"db_path,omitempty"`
	Timeout         time.Duration   `json:"timeout,omitempty"` // per tool invocation, 0 = none
}

// DefaultRunSpec returns the settings matching the conventional layout:
// shaders/ in, obj/ out, glslangValidator and spirv-reflect on PATH.
func DefaultRunSpec() RunSpec {
	return RunSpec{
		ShaderDir:    "shaders",
		ObjDir:       "obj",
		CompilerBin:  "glslangValidator",
		ReflectorBin: "spirv-reflect",
		Mode:         AggregateFirstStage,
		Format:       FormatText,
	}
}

// PipelineStatus is the outcome of processing one pipeline
type PipelineStatus string

const (
	StatusSucceeded PipelineStatus = "succeeded"
	StatusSkipped   PipelineStatus = "skipped" // no bindings to report
	StatusFailed    PipelineStatus = "failed"
)

// PipelineResult records what happened to one pipeline during a run
type PipelineResult struct {
	Pipeline   string                 `json:"pipeline"`
	Stages     []string               `json:"stages"`
	Status     PipelineStatus         `json:"status"`
	View       *AggregatedBindingView `json:"view,omitempty"`
	Phase      string                 `json:"phase,omitempty"`
	Error      string                 `json:"error,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// RunSummary is the full result of a run
type RunSummary struct {
	RunID      string           `json:"run_id"`
	Spec       RunSpec          `json:"spec"`
	Pipelines  []PipelineResult `json:"pipelines"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Aborted    bool             `json:"aborted"`
}

// Failed returns the results of pipelines that failed.
func (s *RunSummary) Failed() []PipelineResult {
	var failed []PipelineResult
	for _, p := range s.Pipelines {
		if p.Status == StatusFailed {
			failed = append(failed, p)
		}
	}
	return failed
}

// Status summarizes the run as a single word for storage.
func (s *RunSummary) Status() string {
	switch {
	case s.Aborted:
		return "aborted"
	case len(s.Failed()) > 0:
		return "failed"
	default:
		return "completed"
	}
}
