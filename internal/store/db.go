package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-shader-reflect/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// ErrNotInitialized is returned when the store is used before InitDB.
var ErrNotInitialized = errors.New("store not initialized")

// Initialize DB connection
func InitDB(dbPath string) error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		pipeline_count INTEGER DEFAULT 0,
		failed_count INTEGER DEFAULT 0,
		created_at DATETIME,
		finished_at DATETIME
	);
	`
	pipelineTable := `
	CREATE TABLE IF NOT EXISTS pipeline_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		pipeline TEXT,
		stages TEXT,
		status TEXT,
		phase TEXT,
		error_message TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);
	`
	bindingTable := `
	CREATE TABLE IF NOT EXISTS bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		pipeline TEXT,
		position INTEGER,
		set_index INTEGER,
		binding_index INTEGER,
		resource_type INTEGER,
		type_name TEXT,
		name TEXT
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		pipeline TEXT,
		phase TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, pipelineTable, bindingTable, errorTable} {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	db = conn
	return nil
}

// Close closes the DB connection
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun stores a new run in the "running" state
func SaveRun(runID string, spec model.RunSpec, startedAt time.Time) error {
	if db == nil {
		return ErrNotInitialized
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at) VALUES (?, ?, ?, ?)`,
		runID, string(specJSON), "running", startedAt.UTC())
	return err
}

// FinishRun stores the final status and counts of a run
func FinishRun(summary *model.RunSummary) error {
	if db == nil {
		return ErrNotInitialized
	}
	_, err := db.Exec(`UPDATE runs SET status = ?, pipeline_count = ?, failed_count = ?, finished_at = ? WHERE id = ?`,
		summary.Status(), len(summary.Pipelines), len(summary.Failed()), summary.FinishedAt.UTC(), summary.RunID)
	return err
}

// SavePipelineResult stores a pipeline outcome and its reported bindings
func SavePipelineResult(runID string, result model.PipelineResult) error {
	if db == nil {
		return ErrNotInitialized
	}
	stagesJSON, err := json.Marshal(result.Stages)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO pipeline_results (run_id, pipeline, stages, status, phase, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Pipeline, string(stagesJSON), string(result.Status), result.Phase, result.Error,
		result.StartedAt.UTC(), result.FinishedAt.UTC())
	if err != nil {
		return err
	}

	if result.View != nil {
		for i, b := range result.View.Bindings {
			_, err = tx.Exec(`INSERT INTO bindings (run_id, pipeline, position, set_index, binding_index, resource_type, type_name, name)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, result.Pipeline, i, b.Set, b.Binding, b.ResourceType, b.TypeName, b.Name)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// SaveRunError records an error for a run
func SaveRunError(runID, pipeline, phase string, err error) error {
	if err == nil {
		return nil
	}
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, pipeline, phase, error_message, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, pipeline, phase, err.Error(), now)
	return e
}

// ListRuns returns all runs with basic info, newest first
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT id, status, pipeline_count, failed_count, created_at, finished_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []map[string]interface{}{}
	for rows.Next() {
		var id, status string
		var pipelineCount, failedCount int
		var createdAt time.Time
		var finishedAt sql.NullTime
		if err := rows.Scan(&id, &status, &pipelineCount, &failedCount, &createdAt, &finishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":            id,
			"status":        status,
			"pipelineCount": pipelineCount,
			"failedCount":   failedCount,
			"createdAt":     createdAt,
			"finishedAt":    nullTime(finishedAt),
		})
	}
	return runs, rows.Err()
}

// GetRun fetches a run with its spec and status
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	var specJSON, status string
	var pipelineCount, failedCount int
	var createdAt time.Time
	var finishedAt sql.NullTime

	err := db.QueryRow(`SELECT spec, status, pipeline_count, failed_count, created_at, finished_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &pipelineCount, &failedCount, &createdAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":            runID,
		"spec":          spec,
		"status":        status,
		"pipelineCount": pipelineCount,
		"failedCount":   failedCount,
		"createdAt":     createdAt,
		"finishedAt":    nullTime(finishedAt),
	}, nil
}

// GetRunPipelines returns the pipeline outcomes of a run in processing order
func GetRunPipelines(runID string) ([]model.PipelineResult, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT pipeline, stages, status, phase, error_message, started_at, finished_at
		FROM pipeline_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.PipelineResult{}
	for rows.Next() {
		var r model.PipelineResult
		var stagesJSON, status string
		if err := rows.Scan(&r.Pipeline, &stagesJSON, &status, &r.Phase, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stagesJSON), &r.Stages); err != nil {
			return nil, err
		}
		r.Status = model.PipelineStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetRunBindings returns the reported bindings of a run, optionally only
// those of one pipeline, in report order
func GetRunBindings(runID, pipeline string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	query := `SELECT pipeline, set_index, binding_index, resource_type, type_name, name FROM bindings WHERE run_id = ?`
	args := []interface{}{runID}
	if pipeline != "" {
		query += ` AND pipeline = ?`
		args = append(args, pipeline)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bindings := []map[string]interface{}{}
	for rows.Next() {
		var pipe, typeName, name string
		var set, binding uint32
		var resourceType int
		if err := rows.Scan(&pipe, &set, &binding, &resourceType, &typeName, &name); err != nil {
			return nil, err
		}
		bindings = append(bindings, map[string]interface{}{
			"pipeline":      pipe,
			"set":           set,
			"binding":       binding,
			"resource_type": resourceType,
			"type_name":     typeName,
			"name":          name,
		})
	}
	return bindings, rows.Err()
}

// GetRunErrors returns the errors recorded for a run
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT pipeline, phase, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []map[string]interface{}{}
	for rows.Next() {
		var pipeline, phase, message string
		var createdAt time.Time
		if err := rows.Scan(&pipeline, &phase, &message, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"pipeline":  pipeline,
			"phase":     phase,
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return errs, rows.Err()
}

func nullTime(t sql.NullTime) interface{} {
	if !t.Valid {
		return nil
	}
	return t.Time
}

// RunRecorder records pipeline runs into the store
type RunRecorder struct{}

func (RunRecorder) StartRun(runID string, spec model.RunSpec, startedAt time.Time) error {
	return SaveRun(runID, spec, startedAt)
}

func (RunRecorder) RecordPipeline(runID string, result model.PipelineResult) error {
	return SavePipelineResult(runID, result)
}

func (RunRecorder) RecordError(runID, pipeline, phase string, err error) error {
	return SaveRunError(runID, pipeline, phase, err)
}

func (RunRecorder) FinishRun(summary *model.RunSummary) error {
	return FinishRun(summary)
}
