package jsonschema

// Options holds every flag recognized by the generation, join and comparison operations.
// The zero value is the default behaviour.
type Options struct {
	// NoRequired never computes or emits `required`. During comparison it behaves like
	// IgnoreRequired.
	NoRequired bool

	// AdditionalProperties, when set, is emitted as `additionalProperties` on every
	// generated object.
	AdditionalProperties *bool

	// RestrictiveArrays attaches `minItems` to generated non-empty arrays: the value of
	// MinItemsOverride if set, the observed length otherwise.
	RestrictiveArrays bool

	// MinItemsOverride also replaces the joined `minItems` when every joined array
	// declares one.
	MinItemsOverride *int

	// RestrictiveNulls marks generated nulls `nullable: true` and everything else
	// `nullable: false`, and keeps alternatives that disagree on nullability apart
	// unless their content is identical.
	RestrictiveNulls bool

	// MergeToLessRestrictive resolves conflicts between joined containers to the most
	// permissive result: a container missing items or properties drops them from the
	// join, and mixed nullable or additionalProperties flags resolve to permissive.
	MergeToLessRestrictive bool

	// IgnoreRequired skips `required` when comparing.
	IgnoreRequired bool

	// SubsetRequired compares `required` one way: the first schema's names must all be
	// required by the second.
	SubsetRequired bool
}

// subsetJoin is the join policy behind IsSubset.
var subsetJoin = Options{RestrictiveNulls: true, MergeToLessRestrictive: true}

func (o Options) ignoreRequired() bool {
	return o.IgnoreRequired || o.NoRequired
}
