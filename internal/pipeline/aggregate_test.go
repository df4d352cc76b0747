package pipeline

import (
	"errors"
	"testing"

	"go-shader-reflect/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(stagePath string, bindings ...model.BindingRecord) model.ReflectionReport {
	stage, _ := model.NewStageFile(stagePath)
	return model.ReflectionReport{
		Artifact: model.CompiledArtifact{Stage: stage, Path: "obj/" + stage.Base() + ".spv"},
		Bindings: bindings,
	}
}

func names(view model.AggregatedBindingView) []string {
	var out []string
	for _, b := range view.Bindings {
		out = append(out, b.Name)
	}
	return out
}

func TestAggregate_FirstStageOnly(t *testing.T) {
	assert := assert.New(t)

	reports := []model.ReflectionReport{
		report("shaders/basic.vert", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"}),
		report("shaders/basic.frag", model.BindingRecord{Set: 0, Binding: 2, ResourceType: 5, Name: "tex"}),
	}

	view, err := Aggregate("basic", model.AggregateFirstStage, reports)
	require.NoError(t, err)

	assert.Equal("basic", view.Pipeline)
	assert.Equal(model.AggregateFirstStage, view.Mode)
	assert.Equal([]model.ResolvedBinding{{
		BindingRecord: model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
		TypeName:      "uniform",
	}}, view.Bindings)
}

func TestAggregate_DefaultModeIsFirstStage(t *testing.T) {
	reports := []model.ReflectionReport{
		report("shaders/basic.vert", model.BindingRecord{Set: 0, Binding: 0, ResourceType: 4, Name: "a"}),
		report("shaders/basic.frag", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 4, Name: "b"}),
	}

	view, err := Aggregate("basic", "", reports)
	require.NoError(t, err)
	assert.Equal(t, model.AggregateFirstStage, view.Mode)
	assert.Equal(t, []string{"a"}, names(view))
}

func TestAggregate_PreservesReportOrder(t *testing.T) {
	reports := []model.ReflectionReport{
		report("shaders/p.vert",
			model.BindingRecord{Set: 1, Binding: 3, ResourceType: 4, Name: "z"},
			model.BindingRecord{Set: 0, Binding: 0, ResourceType: 2, Name: "a"},
			model.BindingRecord{Set: 0, Binding: 7, ResourceType: 1, Name: "m"},
		),
	}

	view, err := Aggregate("p", model.AggregateFirstStage, reports)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, names(view))
}

func TestAggregate_EmptyReports(t *testing.T) {
	view, err := Aggregate("p", model.AggregateFirstStage, []model.ReflectionReport{report("shaders/p.vert")})
	require.NoError(t, err)
	assert.Empty(t, view.Bindings)

	view, err = Aggregate("p", model.AggregateMergeUnion, nil)
	require.NoError(t, err)
	assert.Empty(t, view.Bindings)
}

func TestAggregate_UnknownResourceType(t *testing.T) {
	reports := []model.ReflectionReport{
		report("shaders/odd.vert", model.BindingRecord{Set: 0, Binding: 0, ResourceType: 99, Name: "weird"}),
	}

	_, err := Aggregate("odd", model.AggregateFirstStage, reports)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownResourceType))
	assert.Contains(t, err.Error(), "code 99")

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "odd", pe.Pipeline)
	assert.Equal(t, PhaseAggregate, pe.Phase)
}

func TestAggregate_UnknownTypeInLaterStageIgnoredInFirstStageMode(t *testing.T) {
	reports := []model.ReflectionReport{
		report("shaders/p.vert", model.BindingRecord{Set: 0, Binding: 0, ResourceType: 2, Name: "ok"}),
		report("shaders/p.frag", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 99, Name: "weird"}),
	}

	_, err := Aggregate("p", model.AggregateFirstStage, reports)
	assert.NoError(t, err)

	_, err = Aggregate("p", model.AggregateMergeUnion, reports)
	assert.ErrorIs(t, err, ErrUnknownResourceType)
}

func TestAggregate_MergeUnion(t *testing.T) {
	reports := []model.ReflectionReport{
		report("shaders/basic.vert",
			model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
		),
		report("shaders/basic.frag",
			model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "Globals"},
			model.BindingRecord{Set: 0, Binding: 2, ResourceType: 5, Name: "tex"},
		),
	}

	view, err := Aggregate("basic", model.AggregateMergeUnion, reports)
	require.NoError(t, err)
	assert.Equal(t, model.AggregateMergeUnion, view.Mode)
	assert.Equal(t, []string{"MVP", "tex"}, names(view))
	assert.Equal(t, "combinedImageSampler", view.Bindings[1].TypeName)
}

func TestAggregate_MergeStrict(t *testing.T) {
	same := []model.ReflectionReport{
		report("shaders/basic.vert", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"}),
		report("shaders/basic.frag",
			model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"},
			model.BindingRecord{Set: 1, Binding: 0, ResourceType: 4, Name: "lights"},
		),
	}
	view, err := Aggregate("basic", model.AggregateMergeStrict, same)
	require.NoError(t, err)
	assert.Equal(t, []string{"MVP", "lights"}, names(view))

	conflicting := []model.ReflectionReport{
		report("shaders/basic.vert", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 2, Name: "MVP"}),
		report("shaders/basic.frag", model.BindingRecord{Set: 0, Binding: 1, ResourceType: 4, Name: "MVP"}),
	}
	_, err = Aggregate("basic", model.AggregateMergeStrict, conflicting)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindingConflict)
	assert.Contains(t, err.Error(), "shaders/basic.frag")
}

func TestAggregate_UnknownMode(t *testing.T) {
	_, err := Aggregate("p", model.AggregationMode("last-stage"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last-stage")
}
