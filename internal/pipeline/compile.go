package pipeline

import (
	"context"
	"fmt"
	"io"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/pkg/utils"
)

// Compiler turns stage sources into SPIR-V with glslangValidator (or a
// compatible binary).
type Compiler struct {
	Bin    string
	Runner CommandRunner
	Paths  *utils.OutputManager

	// Progress receives one line per compiled stage; nil disables it.
	Progress io.Writer
	Color    bool
}

// NewCompiler creates a Compiler writing artifacts under paths.
func NewCompiler(bin string, runner CommandRunner, paths *utils.OutputManager) *Compiler {
	return &Compiler{Bin: bin, Runner: runner, Paths: paths}
}

// Compile compiles one stage to <obj>/<basename>.spv, overwriting any previous artifact.
func (c *Compiler) Compile(ctx context.Context, stage model.StageFile) (model.CompiledArtifact, error) {
	artifact := model.CompiledArtifact{
		Stage: stage,
		Path:  c.Paths.SpirvPath(stage.Path),
	}

	if c.Progress != nil {
		fmt.Fprintln(c.Progress, utils.Decorate(stage.Path, utils.ColorCyan, c.Color))
	}

	stdout, stderr, err := c.Runner.Run(ctx, c.Bin,
		"--quiet",
		"-V", // Vulkan semantics, SPIR-V output.
		"-o", artifact.Path,
		stage.Path,
	)
	if err != nil {
		if out := toolOutput(stdout, stderr); out != "" {
			err = fmt.Errorf("%s\n%w", out, err)
		}
		return artifact, c.fail(stage, err)
	}

	// Some compiler wrappers exit 0 without writing anything.
	if size, err := c.Paths.GetFileSize(artifact.Path); err != nil || size == 0 {
		return artifact, c.fail(stage, fmt.Errorf("no artifact written to %s", artifact.Path))
	}
	return artifact, nil
}

func (c *Compiler) fail(stage model.StageFile, err error) error {
	return &PipelineError{
		Pipeline: stage.Pipeline,
		Stage:    stage.Path,
		Phase:    PhaseCompile,
		Kind:     ErrCompile,
		Err:      err,
	}
}
