// Package pipelinetest provides stand-ins for the external shader tools.
package pipelinetest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go-shader-reflect/internal/model"
)

// FakeRunner imitates glslangValidator and spirv-reflect. Compiling writes a
// placeholder artifact; reflecting returns the output registered for the
// artifact's base name.
type FakeRunner struct {
	CompilerBin  string
	ReflectorBin string

	// Reflections maps artifact base names ("basic.vert.spv") to reflector stdout.
	Reflections map[string]string
	// FailCompile lists source paths whose compilation fails.
	FailCompile map[string]bool

	mu    sync.Mutex
	Calls [][]string
}

// NewFakeRunner returns a FakeRunner answering to the default tool names.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		CompilerBin:  "glslangValidator",
		ReflectorBin: "spirv-reflect",
		Reflections:  make(map[string]string),
		FailCompile:  make(map[string]bool),
	}
}

// Run implements pipeline.CommandRunner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]string{name}, args...))
	f.mu.Unlock()

	switch name {
	case f.CompilerBin:
		// --quiet -V -o <out> <src>
		if len(args) != 5 {
			return nil, []byte("usage"), errors.New("exit status 1")
		}
		out, src := args[3], args[4]
		if f.FailCompile[src] {
			return nil, []byte("ERROR: " + src + ":1: syntax error"), errors.New("exit status 2")
		}
		if err := os.WriteFile(out, []byte{0x03, 0x02, 0x23, 0x07}, 0644); err != nil {
			return nil, []byte(err.Error()), errors.New("exit status 1")
		}
		return nil, nil, nil
	case f.ReflectorBin:
		artifact := args[len(args)-1]
		if _, err := os.Stat(artifact); err != nil {
			return nil, []byte("error: cannot open " + artifact), errors.New("exit status 1")
		}
		out, ok := f.Reflections[filepath.Base(artifact)]
		if !ok {
			return []byte(ReflectOutput()), nil, nil
		}
		return []byte(out), nil, nil
	default:
		return nil, nil, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
}

// Invocations returns the recorded calls of the named tool.
func (f *FakeRunner) Invocations(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls [][]string
	for _, c := range f.Calls {
		if c[0] == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// ReflectOutput renders bindings the way spirv-reflect -y -v 0 prints them,
// including the two header lines and anchors/aliases.
func ReflectOutput(bindings ...model.BindingRecord) string {
	var b strings.Builder
	b.WriteString("%YAML 1.0\n---\n")
	b.WriteString("all_type_descriptions:\n")
	b.WriteString("  - &td0\n    id: 7\n    op: 30\n    type_name: \"UBO\"\n    struct_member_name: \n")
	b.WriteString("all_descriptor_bindings:\n")
	for i, r := range bindings {
		fmt.Fprintf(&b, "  - &db%d\n", i)
		fmt.Fprintf(&b, "    spirv_id: %d\n", 10+i)
		fmt.Fprintf(&b, "    name: \"%s\"\n", r.Name)
		fmt.Fprintf(&b, "    binding: %d\n", r.Binding)
		b.WriteString("    input_attachment_index: 0\n")
		fmt.Fprintf(&b, "    set: %d\n", r.Set)
		b.WriteString("    decoration_flags: 0\n")
		b.WriteString("    descriptor_type: 6 # VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER\n")
		fmt.Fprintf(&b, "    resource_type: %d # reflected\n", r.ResourceType)
		b.WriteString("    image: { dim: 0, depth: 0, arrayed: 0, ms: 0, sampled: 0, image_format: 0 } # dim=1D image_format=Unknown\n")
		b.WriteString("    array: { dims_count: 0, dims: [] }\n")
		b.WriteString("    accessed: 1\n")
		b.WriteString("    uav_counter_binding:\n")
		b.WriteString("    type_description: *td0\n")
		b.WriteString("    word_offset: { binding: 167, set: 163 }\n")
	}
	b.WriteString("module:\n")
	b.WriteString("  generator: 8 # Khronos Glslang Reference Front End\n")
	b.WriteString("  entry_point_name: \"main\"\n")
	b.WriteString("  descriptor_binding_count: " + fmt.Sprint(len(bindings)) + "\n")
	return b.String()
}
