package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"go-shader-reflect/internal/model"
)

// FormatBinding renders one binding as "(set=S, binding=B) <type> <name>".
func FormatBinding(b model.ResolvedBinding) string {
	return fmt.Sprintf("(set=%d, binding=%d) %s %s", b.Set, b.Binding, b.TypeName, b.Name)
}

// WriteText writes one line per binding in view order. An empty view writes nothing.
func WriteText(w io.Writer, view model.AggregatedBindingView) error {
	for _, b := range view.Bindings {
		if _, err := fmt.Fprintln(w, FormatBinding(b)); err != nil {
			return err
		}
	}
	return nil
}

// ExportManager writes a finished run in a machine readable format
type ExportManager struct {
	Format model.OutputFormat
	Out    io.Writer
}

// NewExportManager creates an ExportManager for format writing to out.
func NewExportManager(format model.OutputFormat, out io.Writer) *ExportManager {
	return &ExportManager{Format: format, Out: out}
}

// Streams reports whether bindings are printed per pipeline as the run
// progresses rather than once at the end.
func (em *ExportManager) Streams() bool {
	return em.Format == model.FormatText || em.Format == ""
}

// ExportPipeline is called after each pipeline; only text output streams.
func (em *ExportManager) ExportPipeline(view model.AggregatedBindingView) error {
	if !em.Streams() {
		return nil
	}
	return WriteText(em.Out, view)
}

// ExportRun is called once the run is over.
func (em *ExportManager) ExportRun(summary *model.RunSummary) error {
	switch em.Format {
	case model.FormatJSON:
		return em.exportToJSON(summary)
	case model.FormatCSV:
		return em.exportToCSV(summary)
	default:
		return nil
	}
}

// exportToJSON writes the whole summary as one indented document
func (em *ExportManager) exportToJSON(summary *model.RunSummary) error {
	encoder := json.NewEncoder(em.Out)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"run_id":    summary.RunID,
		"mode":      summary.Spec.Mode,
		"status":    summary.Status(),
		"pipelines": summary.Pipelines,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// exportToCSV writes one row per reported binding
func (em *ExportManager) exportToCSV(summary *model.RunSummary) error {
	writer := csv.NewWriter(em.Out)

	header := []string{"pipeline", "set", "binding", "resource_type", "type_name", "name"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, result := range summary.Pipelines {
		if result.View == nil {
			continue
		}
		for _, b := range result.View.Bindings {
			row := []string{
				result.Pipeline,
				strconv.FormatUint(uint64(b.Set), 10),
				strconv.FormatUint(uint64(b.Binding), 10),
				strconv.Itoa(b.ResourceType),
				b.TypeName,
				b.Name,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
