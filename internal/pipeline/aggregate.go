package pipeline

import (
	"fmt"

	"go-shader-reflect/internal/model"
)

// ------------------- Binding Aggregation -------------------

// Aggregate selects the bindings to report for a pipeline from its per-stage
// reflection reports (in stage order) and resolves their resource types.
func Aggregate(pipeline string, mode model.AggregationMode, reports []model.ReflectionReport) (model.AggregatedBindingView, error) {
	view := model.AggregatedBindingView{Pipeline: pipeline, Mode: mode}

	var selected []model.BindingRecord
	var err error
	switch mode {
	case model.AggregateFirstStage, "":
		view.Mode = model.AggregateFirstStage
		if len(reports) > 0 {
			selected = reports[0].Bindings
		}
	case model.AggregateMergeUnion:
		selected, err = mergeBindings(reports, false)
	case model.AggregateMergeStrict:
		selected, err = mergeBindings(reports, true)
	default:
		return view, fmt.Errorf("unknown aggregation mode %q", mode)
	}
	if err != nil {
		return view, &PipelineError{Pipeline: pipeline, Phase: PhaseAggregate, Kind: ErrBindingConflict, Err: err}
	}

	for _, b := range selected {
		typeName, ok := model.ResourceTypeName(b.ResourceType)
		if !ok {
			return view, &PipelineError{
				Pipeline: pipeline,
				Phase:    PhaseAggregate,
				Kind:     ErrUnknownResourceType,
				Err:      fmt.Errorf("code %d for binding %q (set=%d, binding=%d)", b.ResourceType, b.Name, b.Set, b.Binding),
			}
		}
		view.Bindings = append(view.Bindings, model.ResolvedBinding{BindingRecord: b, TypeName: typeName})
	}
	return view, nil
}

// mergeBindings concatenates the reports' bindings, keeping the first
// declaration of each (set, binding) slot. When strict, a later declaration
// of the same slot with a different type or name is an error.
func mergeBindings(reports []model.ReflectionReport, strict bool) ([]model.BindingRecord, error) {
	var merged []model.BindingRecord
	seen := make(map[model.Slot]int)

	for _, report := range reports {
		for _, b := range report.Bindings {
			idx, exists := seen[b.Slot()]
			if !exists {
				seen[b.Slot()] = len(merged)
				merged = append(merged, b)
				continue
			}
			first := merged[idx]
			if strict && (first.ResourceType != b.ResourceType || first.Name != b.Name) {
				return nil, fmt.Errorf("set=%d, binding=%d declared as %q (type %d) and as %q (type %d) in %s",
					b.Set, b.Binding, first.Name, first.ResourceType, b.Name, b.ResourceType, report.Artifact.Stage.Path)
			}
		}
	}
	return merged, nil
}
