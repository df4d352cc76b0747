package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/pkg/utils"

	"gopkg.in/yaml.v2"
)

// reflectHeaderLines is the number of leading lines spirv-reflect prints
// before the YAML body ("%YAML 1.0" and "---").
const reflectHeaderLines = 2

var errEmptyReflection = errors.New("empty reflection output")

// reflectDocument is the part of the spirv-reflect YAML we read.
type reflectDocument struct {
	AllDescriptorBindings []model.BindingRecord `yaml:"all_descriptor_bindings"`
}

// Reflector extracts descriptor bindings from compiled artifacts with
// spirv-reflect (or a compatible binary).
type Reflector struct {
	Bin    string
	Runner CommandRunner
	Paths  *utils.OutputManager

	// KeepReports writes the raw reflector output next to the artifact.
	KeepReports bool
}

// NewReflector creates a Reflector.
func NewReflector(bin string, runner CommandRunner, paths *utils.OutputManager) *Reflector {
	return &Reflector{Bin: bin, Runner: runner, Paths: paths}
}

// Reflect runs the reflector on artifact and parses its report.
func (r *Reflector) Reflect(ctx context.Context, artifact model.CompiledArtifact) (model.ReflectionReport, error) {
	fail := func(err error) (model.ReflectionReport, error) {
		return model.ReflectionReport{Artifact: artifact}, &PipelineError{
			Pipeline: artifact.Stage.Pipeline,
			Stage:    artifact.Stage.Path,
			Phase:    PhaseReflect,
			Kind:     ErrReflect,
			Err:      err,
		}
	}

	stdout, stderr, err := r.Runner.Run(ctx, r.Bin, "-y", "-v", "0", artifact.Path)
	if err != nil {
		if out := toolOutput(nil, stderr); out != "" {
			err = fmt.Errorf("%s\n%w", out, err)
		}
		return fail(err)
	}

	if r.KeepReports {
		reportPath := r.Paths.ReflectPath(artifact.Stage.Path)
		if err := os.WriteFile(reportPath, stdout, 0644); err != nil {
			return fail(fmt.Errorf("unable to write report %q: %w", reportPath, err))
		}
	}

	bindings, err := ParseReflection(stdout)
	if err != nil {
		return fail(err)
	}
	return model.ReflectionReport{Artifact: artifact, Bindings: bindings}, nil
}

// ParseReflection decodes spirv-reflect YAML output. The header lines are
// discarded. A report without all_descriptor_bindings yields nil bindings.
func ParseReflection(out []byte) ([]model.BindingRecord, error) {
	lines := bytes.SplitN(out, []byte("\n"), reflectHeaderLines+1)
	if len(lines) <= reflectHeaderLines {
		return nil, errEmptyReflection
	}
	body := lines[reflectHeaderLines]
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyReflection
	}

	var doc reflectDocument
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode reflection YAML: %w", err)
	}
	return doc.AllDescriptorBindings, nil
}
