package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-shader-reflect/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvocation_Defaults(t *testing.T) {
	spec, err := ParseInvocation(nil)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRunSpec(), spec)
}

func TestParseInvocation_AllFlags(t *testing.T) {
	spec, err := ParseInvocation([]string{
		"-shaders", "assets/shaders/",
		"-obj", "build/obj",
		"-compiler", "/opt/vulkan/bin/glslangValidator",
		"-reflector", "spirv-reflect-1.3",
		"-mode", "Merge-Strict",
		"-format", "csv",
		"-fail-fast",
		"-write-reflection",
		"-db", "runs.db",
		"-timeout", "45s",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RunSpec{
		ShaderDir:       filepath.Clean("assets/shaders"),
		ObjDir:          filepath.Clean("build/obj"),
		CompilerBin:     "/opt/vulkan/bin/glslangValidator",
		ReflectorBin:    "spirv-reflect-1.3",
		Mode:            model.AggregateMergeStrict,
		Format:          model.FormatCSV,
		FailFast:        true,
		WriteReflection: true,
		DBPath:          "runs.db",
		Timeout:         45 * time.Second,
	}, spec)
}

func TestParseInvocation_Rejected(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":   {"-verbose"},
		"positional":     {"shaders"},
		"bad mode":       {"-mode", "last-stage"},
		"bad format":     {"-format", "xml"},
		"bad timeout":    {"-timeout", "soon"},
		"neg timeout":    {"-timeout", "-5s"},
		"empty shaders":  {"-shaders", ""},
		"blank compiler": {"-compiler", "  "},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInvocation(args)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidInvocation, ExitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitConfigError, ExitCode(configErrorf("missing %s", "obj")))
	assert.Equal(t, ExitInvalidInvocation, ExitCode(&InvocationError{Message: "no code"}))
	assert.Equal(t, ExitInternalError, ExitCode(errors.New("boom")))
}
