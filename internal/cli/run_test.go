package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/internal/pipeline/pipelinetest"
	"go-shader-reflect/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDirs(t *testing.T, files ...string) (shaderDir, objDir string) {
	t.Helper()
	root := t.TempDir()
	shaderDir = filepath.Join(root, "shaders")
	objDir = filepath.Join(root, "obj")
	require.NoError(t, os.Mkdir(shaderDir, 0755))
	require.NoError(t, os.Mkdir(objDir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(shaderDir, f), []byte("#version 450\n"), 0644))
	}
	return shaderDir, objDir
}

func TestRunWith_Success(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "basic.vert", "basic.frag")
	fake := pipelinetest.NewFakeRunner()
	fake.Reflections["basic.vert.spv"] = pipelinetest.ReflectOutput(
		model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
	)

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir}, fake, &stdout, &stderr)

	assert.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "(set=0, binding=1) uniform MVP\n")
	assert.FileExists(t, filepath.Join(objDir, "basic.vert.spv"))
	assert.FileExists(t, filepath.Join(objDir, "basic.frag.spv"))
}

func TestRunWith_InvalidInvocation(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-mode", "nope"}, pipelinetest.NewFakeRunner(), &stdout, &stderr)

	assert.Equal(t, ExitInvalidInvocation, code)
	assert.Contains(t, stderr.String(), "invalid --mode")
	assert.Empty(t, stdout.String())
}

func TestRunWith_MissingObjDir(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "basic.vert")
	require.NoError(t, os.Remove(objDir))

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir}, pipelinetest.NewFakeRunner(), &stdout, &stderr)

	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr.String(), "output directory")
	_, err := os.Stat(objDir)
	assert.True(t, os.IsNotExist(err), "obj dir must not be created")
}

func TestRunWith_MissingShaderDir(t *testing.T) {
	_, objDir := setupDirs(t)

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", filepath.Join(objDir, "none"), "-obj", objDir}, pipelinetest.NewFakeRunner(), &stdout, &stderr)
	assert.Equal(t, ExitConfigError, code)
}

func TestRunWith_PipelineFailureIsolated(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "bad.vert", "good.vert")
	fake := pipelinetest.NewFakeRunner()
	fake.Reflections["bad.vert.spv"] = pipelinetest.ReflectOutput(
		model.BindingRecord{Set: 0, Binding: 0, ResourceType: 99, Name: "weird"},
	)
	fake.Reflections["good.vert.spv"] = pipelinetest.ReflectOutput(
		model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
	)

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir}, fake, &stdout, &stderr)

	assert.Equal(t, ExitPipelineFailure, code)
	assert.Contains(t, stdout.String(), "(set=0, binding=1) uniform MVP")
	assert.Contains(t, stderr.String(), "1 of 2 pipelines failed")
}

func TestRunWith_FailFast(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "bad.vert", "good.vert")
	fake := pipelinetest.NewFakeRunner()
	fake.Reflections["bad.vert.spv"] = pipelinetest.ReflectOutput(
		model.BindingRecord{Set: 0, Binding: 0, ResourceType: 99, Name: "weird"},
	)

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir, "-fail-fast"}, fake, &stdout, &stderr)

	assert.Equal(t, ExitPipelineFailure, code)
	assert.Contains(t, stderr.String(), "unknown resource type")
	assert.NotContains(t, stdout.String(), "good.vert")
}

func TestRunWith_RecordsIntoDatabase(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "basic.vert")
	fake := pipelinetest.NewFakeRunner()
	fake.Reflections["basic.vert.spv"] = pipelinetest.ReflectOutput(
		model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
	)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir, "-db", dbPath}, fake, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	require.NoError(t, store.InitDB(dbPath))
	defer store.Close()
	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0]["status"])

	bindings, err := store.GetRunBindings(runs[0]["id"].(string), "basic")
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, "MVP", bindings[0]["name"])
}

func TestRunWith_JSONFormat(t *testing.T) {
	shaderDir, objDir := setupDirs(t, "basic.vert")

	var stdout, stderr bytes.Buffer
	code := RunWith(context.Background(), []string{"-shaders", shaderDir, "-obj", objDir, "-format", "json"}, pipelinetest.NewFakeRunner(), &stdout, &stderr)

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), `"status": "completed"`)
	assert.Contains(t, stderr.String(), "basic.vert")
}
