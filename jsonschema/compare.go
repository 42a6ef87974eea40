package jsonschema

import (
	"sort"

	"github.com/hashicorp/go-set/v2"
)

// AreSchemasEqual reports whether a and b describe the same values. Absent nullable and
// additionalProperties flags compare equal to true. Alternatives are paired after a
// stable sort by type name, so two alternatives of the same type are paired in the
// order they appear.
func AreSchemasEqual(a, b Schema, opts Options) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	as, bs := sortedAlternatives(a), sortedAlternatives(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !nodesEqual(as[i], bs[i], opts) {
			return false
		}
	}
	return true
}

// IsSubset reports whether every value accepted by subset is accepted by superset: the
// permissive join of both must give superset back, with subset free to require more.
// Same-kind alternatives are paired in order, so IsSubset(s, s) holds for schemas this
// package produced but can fail for a hand-written anyOf that lists a permissive
// alternative before its nullable:false sibling.
func IsSubset(superset, subset Schema, opts Options) bool {
	merged := Combine([]Schema{superset, subset}, subsetJoin)
	return AreSchemasEqual(superset, merged, Options{
		SubsetRequired: true,
		IgnoreRequired: opts.ignoreRequired(),
	})
}

func sortedAlternatives(s Schema) []Schema {
	alts := Unwrap(s)
	sort.SliceStable(alts, func(i, j int) bool {
		return typeOf(alts[i]).String() < typeOf(alts[j]).String()
	})
	return alts
}

func nodesEqual(a, b Schema, opts Options) bool {
	if typeOf(a) != typeOf(b) {
		return false
	}
	if permissive(nullableOf(a)) != permissive(nullableOf(b)) {
		return false
	}

	switch a.Kind() {
	case SchemaKindArray:
		return AreSchemasEqual(a.AsArray().Items, b.AsArray().Items, opts)
	case SchemaKindObject:
		return objectsEqual(a.AsObject(), b.AsObject(), opts)
	}
	return true
}

func objectsEqual(a, b *ObjectSchema, opts Options) bool {
	if permissive(a.AdditionalProperties) != permissive(b.AdditionalProperties) {
		return false
	}
	if !opts.ignoreRequired() && !requiredEqual(a.Required, b.Required, opts.SubsetRequired) {
		return false
	}

	if len(a.Properties) != len(b.Properties) {
		return false
	}
	for name, p := range a.Properties {
		q, ok := b.Properties[name]
		if !ok || !AreSchemasEqual(p, q, opts) {
			return false
		}
	}
	return true
}

// requiredEqual compares required names as sets. With oneWay it only checks that b
// requires everything a does.
func requiredEqual(a, b []string, oneWay bool) bool {
	sa, sb := set.From(a), set.From(b)
	if !oneWay && sa.Size() != sb.Size() {
		return false
	}
	for _, name := range a {
		if !sb.Contains(name) {
			return false
		}
	}
	return true
}
