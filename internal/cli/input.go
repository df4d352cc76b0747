package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/pkg/utils"
)

const (
	ExitSuccess           = 0
	ExitPipelineFailure   = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError carries the exit code for a rejected invocation.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a RunSpec. Only flags are read; no
// environment variables or config files are consulted.
func ParseInvocation(args []string) (model.RunSpec, error) {
	spec := model.DefaultRunSpec()

	fs := flag.NewFlagSet("shaderc", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var mode, format, timeout string
	fs.StringVar(&spec.ShaderDir, "shaders", spec.ShaderDir, "Directory holding <pipeline>.<vert|frag|geom> sources.")
	fs.StringVar(&spec.ObjDir, "obj", spec.ObjDir, "Existing directory receiving <file>.spv artifacts.")
	fs.StringVar(&spec.CompilerBin, "compiler", spec.CompilerBin, "GLSL to SPIR-V compiler binary.")
	fs.StringVar(&spec.ReflectorBin, "reflector", spec.ReflectorBin, "SPIR-V reflection binary.")
	fs.StringVar(&mode, "mode", string(spec.Mode), "Binding aggregation: first-stage|merge-union|merge-strict")
	fs.StringVar(&format, "format", string(spec.Format), "Report format: text|json|csv")
	fs.BoolVar(&spec.FailFast, "fail-fast", false, "Abort the run on the first failing pipeline.")
	fs.BoolVar(&spec.WriteReflection, "write-reflection", false, "Keep reflector output as <obj>/<file>.yaml.")
	fs.StringVar(&spec.DBPath, "db", "", "Record the run into this sqlite database (optional).")
	fs.StringVar(&timeout, "timeout", "", "Timeout per tool invocation, e.g. 30s (optional).")

	if err := fs.Parse(args); err != nil {
		return model.RunSpec{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return model.RunSpec{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	var err error
	if spec.Mode, err = parseMode(mode); err != nil {
		return model.RunSpec{}, err
	}
	if spec.Format, err = parseFormat(format); err != nil {
		return model.RunSpec{}, err
	}
	if spec.Timeout, err = utils.ParseDuration(timeout); err != nil {
		return model.RunSpec{}, invalidInvocationf("invalid --timeout %q: %v", timeout, err)
	}
	if spec.Timeout < 0 {
		return model.RunSpec{}, invalidInvocationf("--timeout must not be negative")
	}

	for name, v := range map[string]*string{
		"shaders": &spec.ShaderDir, "obj": &spec.ObjDir,
		"compiler": &spec.CompilerBin, "reflector": &spec.ReflectorBin,
	} {
		if strings.TrimSpace(*v) == "" {
			return model.RunSpec{}, invalidInvocationf("--%s must not be empty", name)
		}
	}
	spec.ShaderDir = filepath.Clean(spec.ShaderDir)
	spec.ObjDir = filepath.Clean(spec.ObjDir)

	return spec, nil
}

func parseMode(raw string) (model.AggregationMode, error) {
	n := model.AggregationMode(strings.ToLower(strings.TrimSpace(raw)))
	switch n {
	case model.AggregateFirstStage, model.AggregateMergeUnion, model.AggregateMergeStrict:
		return n, nil
	default:
		return "", invalidInvocationf("invalid --mode %q (expected first-stage|merge-union|merge-strict)", raw)
	}
}

func parseFormat(raw string) (model.OutputFormat, error) {
	n := model.OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch n {
	case model.FormatText, model.FormatJSON, model.FormatCSV:
		return n, nil
	default:
		return "", invalidInvocationf("invalid --format %q (expected text|json|csv)", raw)
	}
}

// ExitCode extracts a semantic exit code from an invocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
