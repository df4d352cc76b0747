package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/internal/pipeline"
	"go-shader-reflect/internal/store"
	"go-shader-reflect/pkg/utils"
)

// Run is the CLI entrypoint. It accepts the argument slice (excluding
// argv[0]), writes the report to stdout and diagnostics to stderr, and
// returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return RunWith(ctx, args, pipeline.ExecRunner{}, stdout, stderr)
}

// RunWith is Run with an explicit CommandRunner for the external tools.
// ExecRunner timeouts are taken from the parsed invocation.
func RunWith(ctx context.Context, args []string, runner pipeline.CommandRunner, stdout, stderr io.Writer) int {
	spec, err := ParseInvocation(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitCode(err)
	}

	if err := checkDirs(spec); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitCode(err)
	}

	if er, ok := runner.(pipeline.ExecRunner); ok {
		er.Timeout = spec.Timeout
		runner = er
	}

	r := pipeline.NewRunner(spec, runner, stdout, stderr)

	if spec.DBPath != "" {
		if err := store.InitDB(spec.DBPath); err != nil {
			err = configErrorf("failed to open run database %s: %v", spec.DBPath, err)
			fmt.Fprintln(stderr, err)
			return ExitCode(err)
		}
		defer store.Close()
		r.Recorder = store.RunRecorder{}
	}

	summary, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintln(stderr, utils.Decorate("❌ "+err.Error(), utils.ColorRed, utils.IsTerminal(stderr)))
		var pe *pipeline.PipelineError
		switch {
		case summary == nil:
			return ExitConfigError
		case errors.As(err, &pe):
			return ExitPipelineFailure
		default:
			return ExitInternalError
		}
	}

	if len(summary.Failed()) > 0 {
		return ExitPipelineFailure
	}
	return ExitSuccess
}

// checkDirs verifies the shader and obj directories exist. Neither is created.
func checkDirs(spec model.RunSpec) error {
	info, err := os.Stat(spec.ShaderDir)
	if err != nil {
		return configErrorf("shader directory: %v", err)
	}
	if !info.IsDir() {
		return configErrorf("shader directory %s is not a directory", spec.ShaderDir)
	}
	if err := utils.NewOutputManager(spec.ObjDir).CheckOutputDir(); err != nil {
		return configErrorf("%v", err)
	}
	return nil
}
