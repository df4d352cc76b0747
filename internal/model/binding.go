package model

// Resource type codes reported by spirv-reflect (SpvReflectResourceType).
const (
	ResourceSampler              = 1
	ResourceUniformBuffer        = 2
	ResourceStorageBuffer        = 4
	ResourceCombinedImageSampler = 5
	ResourceUAV                  = 8
)

var resourceTypeNames = map[int]string{
	ResourceSampler:              "sampler",
	ResourceUniformBuffer:        "uniform",
	ResourceStorageBuffer:        "storage",
	ResourceCombinedImageSampler: "combinedImageSampler",
	ResourceUAV:                  "uav",
}

// ResourceTypeName returns the display name for a resource type code.
func ResourceTypeName(code int) (string, bool) {
	name, ok := resourceTypeNames[code]
	return name, ok
}

// BindingRecord is one descriptor binding as reported by the reflector
type BindingRecord struct {
	Set          uint32 `yaml:"set" json:"set"`
	Binding      uint32 `yaml:"binding" json:"binding"`
	ResourceType int    `yaml:"resource_type" json:"resource_type"`
	Name         string `yaml:"name" json:"name"`
}

// Slot identifies a binding by its descriptor coordinates.
type Slot struct {
	Set     uint32
	Binding uint32
}

// Slot returns the (set, binding) coordinates of the record.
func (b BindingRecord) Slot() Slot {
	return Slot{Set: b.Set, Binding: b.Binding}
}

// ReflectionReport holds the bindings reflected from one compiled artifact
type ReflectionReport struct {
	Artifact CompiledArtifact `json:"artifact"`
	Bindings []BindingRecord  `json:"bindings"`
}

// ResolvedBinding is a binding with its resource type resolved for display
type ResolvedBinding struct {
	BindingRecord
	TypeName string `json:"type_name"`
}

// AggregationMode selects how per-stage bindings become the pipeline layout
type AggregationMode string

const (
	// AggregateFirstStage reports only the first stage's bindings.
	AggregateFirstStage AggregationMode = "first-stage"
	// AggregateMergeUnion merges all stages, first declaration of a slot wins.
	AggregateMergeUnion AggregationMode = "merge-union"
	// AggregateMergeStrict merges all stages and rejects conflicting slots.
	AggregateMergeStrict AggregationMode = "merge-strict"
)

// AggregatedBindingView is the binding layout reported for one pipeline
type AggregatedBindingView struct {
	Pipeline string            `json:"pipeline"`
	Mode     AggregationMode   `json:"mode"`
	Bindings []ResolvedBinding `json:"bindings"`
}
