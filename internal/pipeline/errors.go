package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrCompile             = errors.New("compile failed")
	ErrReflect             = errors.New("reflection failed")
	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrBindingConflict     = errors.New("conflicting binding declarations")
)

// Phases a pipeline goes through, used to tag failures.
const (
	PhaseCompile   = "compile"
	PhaseReflect   = "reflect"
	PhaseAggregate = "aggregate"
)

// PipelineError is a failure of one pipeline, tagged with the phase and the
// stage file that caused it (empty for aggregate failures).
type PipelineError struct {
	Pipeline string
	Stage    string
	Phase    string
	Kind     error
	Err      error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Stage != "" {
		return fmt.Sprintf("pipeline %s: %s: %s", e.Pipeline, e.Stage, msg)
	}
	return fmt.Sprintf("pipeline %s: %s", e.Pipeline, msg)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// phaseOf reports the phase of err if it is a PipelineError.
func phaseOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}
