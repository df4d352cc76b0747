package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"go-shader-reflect/internal/model"
	"go-shader-reflect/internal/pipeline"
	"go-shader-reflect/internal/store"
	"go-shader-reflect/pkg/utils"
)

const runsPrefix = "/api/v1/runs/"

// CommandRunner runs the external tools for runs started over the API.
var CommandRunner pipeline.CommandRunner = pipeline.ExecRunner{}

// RunDefaults is the server side configuration of API runs. Directories and
// tool binaries are set from the server flags and never taken from a request.
var RunDefaults = model.DefaultRunSpec()

// runMu serializes API runs; they share one obj directory.
var runMu sync.Mutex

// RunRequest is the body accepted by POST /runs
type RunRequest struct {
	Mode            model.AggregationMode `json:"mode" example:"first-stage"`
	FailFast        bool                  `json:"fail_fast"`
	WriteReflection bool                  `json:"write_reflection"`
	Timeout         string                `json:"timeout" example:"30s"` // per tool invocation
}

// runSpec merges the request into the server defaults.
func (req RunRequest) runSpec() (model.RunSpec, error) {
	spec := RunDefaults
	if req.Mode != "" {
		spec.Mode = req.Mode
	}
	switch spec.Mode {
	case model.AggregateFirstStage, model.AggregateMergeUnion, model.AggregateMergeStrict:
	default:
		return spec, fmt.Errorf("invalid aggregation mode %q", req.Mode)
	}
	spec.FailFast = req.FailFast
	spec.WriteReflection = req.WriteReflection
	if req.Timeout != "" {
		timeout, err := utils.ParseDuration(req.Timeout)
		if err != nil || timeout < 0 {
			return spec, fmt.Errorf("invalid timeout %q", req.Timeout)
		}
		spec.Timeout = timeout
	}
	// Bindings are returned in the response body, not streamed.
	spec.Format = model.FormatJSON
	return spec, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// runIDFromPath extracts the run ID from /api/v1/runs/{id}<suffix>
func runIDFromPath(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, runsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	runID := path[len(runsPrefix) : len(path)-len(suffix)]
	if runID == "" || strings.Contains(runID, "/") {
		return "", false
	}
	return runID, true
}

// CreateRun runs the shader pipelines and records the result
// @Summary Start a run
// @Description Run the shader pipelines of the server's shader directory and record the result
// @Tags runs
// @Accept json
// @Produce json
// @Param run body RunRequest true "Run options"
// @Success 200 {object} map[string]interface{} "Run finished"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	spec, err := req.runSpec()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runner := CommandRunner
	if er, ok := runner.(pipeline.ExecRunner); ok {
		er.Timeout = spec.Timeout
		runner = er
	}

	runMu.Lock()
	defer runMu.Unlock()

	pr := pipeline.NewRunner(spec, runner, io.Discard, os.Stderr)
	pr.Recorder = store.RunRecorder{}

	summary, err := pr.Run(r.Context())
	if summary == nil {
		http.Error(w, "Failed to run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"runID":     summary.RunID,
		"status":    summary.Status(),
		"pipelines": summary.Pipelines,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, resp)
}

// ListRuns retrieves all recorded runs
// @Summary List runs
// @Description Get a list of all recorded runs with their status
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve the spec and status of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := store.GetRun(runID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run)
}

// GetRunPipelines retrieves the pipeline outcomes of a run
// @Summary Get run pipelines
// @Description Retrieve the outcome of every pipeline of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Pipeline results"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/pipelines [get]
func GetRunPipelines(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/pipelines")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	pipelines, err := store.GetRunPipelines(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve pipelines", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id":    runID,
		"pipelines": pipelines,
		"count":     len(pipelines),
	})
}

// GetRunBindings retrieves the reported bindings of a run
// @Summary Get run bindings
// @Description Retrieve the reported descriptor bindings of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Param pipeline query string false "Only bindings of this pipeline"
// @Success 200 {object} map[string]interface{} "Bindings"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/bindings [get]
func GetRunBindings(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/bindings")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	pipelineName := r.URL.Query().Get("pipeline")
	bindings, err := store.GetRunBindings(runID, pipelineName)
	if err != nil {
		http.Error(w, "Failed to retrieve bindings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id":   runID,
		"pipeline": pipelineName,
		"bindings": bindings,
		"count":    len(bindings),
	})
}

// GetRunErrors retrieves errors recorded for a run
// @Summary Get run errors
// @Description Retrieve all errors recorded during a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	errs, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}
