package jsonschema

import (
	"github.com/hashicorp/go-set/v2"
)

// Unwrap flattens unions and anyOf lists into nodes that each describe a single type.
// A union's nullability is copied onto every node it expands to.
func Unwrap(s Schema) []Schema {
	if s == nil {
		return nil
	}
	switch s.Kind() {
	case SchemaKindAnyOf:
		return unwrapAll(s.AsAnyOf().Schemas)
	case SchemaKindUnion:
		u := s.AsUnion()
		res := make([]Schema, len(u.Types))
		for i, k := range u.Types {
			res[i] = bare(k, u.Nullable)
		}
		return res
	}
	return []Schema{s}
}

func unwrapAll(ss []Schema) []Schema {
	res := make([]Schema, 0, len(ss))
	for _, s := range ss {
		res = append(res, Unwrap(s)...)
	}
	return res
}

// Combine joins alternatives into the smallest schema accepting everything any of them
// accepts. Inputs must be in the normal form this package produces. Combine returns nil
// when given no schemas.
func Combine(ss []Schema, opts Options) Schema {
	var buckets [numKinds][]Schema
	for _, s := range unwrapAll(ss) {
		k := typeOf(s)
		buckets[k] = append(buckets[k], s)
	}

	// integers are numbers once any fractional value shows up
	if len(buckets[KindNumber]) > 0 {
		buckets[KindNumber] = append(buckets[KindNumber], buckets[KindInteger]...)
		buckets[KindInteger] = nil
	}

	resolved := make([]Schema, 0, numKinds)
	for k := KindNull; k <= KindString; k++ {
		if len(buckets[k]) == 0 {
			continue
		}
		kind := k
		resolved = append(resolved, joinNullable(buckets[k], opts, func([]Schema) Schema {
			return &ValueSchema{Type: kind}
		})...)
	}
	if len(buckets[KindArray]) > 0 {
		resolved = append(resolved, joinNullable(buckets[KindArray], opts, func(group []Schema) Schema {
			return joinArrays(group, opts)
		})...)
	}
	if len(buckets[KindObject]) > 0 {
		resolved = append(resolved, joinNullable(buckets[KindObject], opts, func(group []Schema) Schema {
			return joinObjects(group, opts)
		})...)
	}

	switch len(resolved) {
	case 0:
		return nil
	case 1:
		return resolved[0]
	}
	return repack(resolved, opts)
}

// joinNullable applies the nullable policy to the members of one bucket. join merges a
// group of members without looking at their nullability.
func joinNullable(members []Schema, opts Options, join func([]Schema) Schema) []Schema {
	var strict, loose []Schema
	for _, m := range members {
		if n := nullableOf(m); n != nil && !*n {
			strict = append(strict, m)
		} else {
			loose = append(loose, m)
		}
	}

	switch {
	case len(loose) == 0:
		return []Schema{withNullable(join(strict), Bool(false))}
	case len(strict) == 0:
		return []Schema{withNullable(join(loose), nil)}
	case !opts.RestrictiveNulls:
		return []Schema{withNullable(join(members), nil)}
	}

	s := withNullable(join(strict), Bool(false))
	l := withNullable(join(loose), nil)
	if identical(withNullable(s, nil), l) {
		// same content: the null difference alone does not split the alternative
		if opts.MergeToLessRestrictive {
			return []Schema{l}
		}
		return []Schema{s}
	}
	return []Schema{s, l}
}

func joinArrays(group []Schema, opts Options) Schema {
	res := &ArraySchema{}

	var items []Schema
	var minItems *int
	missingItems, missingMin := false, false
	for _, m := range group {
		a := m.AsArray()
		if a.Items == nil {
			missingItems = true
		} else {
			items = append(items, Unwrap(a.Items)...)
		}
		if a.MinItems == nil {
			missingMin = true
		} else if minItems == nil || *a.MinItems < *minItems {
			minItems = a.MinItems
		}
	}

	if len(items) > 0 && !(missingItems && opts.MergeToLessRestrictive) {
		res.Items = Combine(items, opts)
	}
	if !missingMin && minItems != nil {
		if opts.MinItemsOverride != nil {
			minItems = opts.MinItemsOverride
		}
		res.MinItems = Int(*minItems)
	}
	return res
}

func joinObjects(group []Schema, opts Options) Schema {
	res := &ObjectSchema{AdditionalProperties: joinAdditional(group, opts)}

	byName := make(map[string][]Schema)
	missingProps := false
	for _, m := range group {
		o := m.AsObject()
		if len(o.Properties) == 0 {
			missingProps = true
		}
		for name, p := range o.Properties {
			byName[name] = append(byName[name], Unwrap(p)...)
		}
	}

	if len(byName) == 0 || (missingProps && opts.MergeToLessRestrictive) {
		return res
	}

	res.Properties = make(map[string]Schema, len(byName))
	for name, ps := range byName {
		res.Properties[name] = Combine(ps, opts)
	}
	if !opts.NoRequired {
		res.Required = joinRequired(group, res.Properties)
	}
	return res
}

// joinRequired keeps the names every member requires, in the first member's order.
func joinRequired(group []Schema, props map[string]Schema) []string {
	others := make([]*set.Set[string], 0, len(group)-1)
	for _, m := range group[1:] {
		others = append(others, set.From(m.AsObject().Required))
	}

	first := group[0].AsObject().Required
	seen := set.New[string](len(first))
	var res []string
	for _, name := range first {
		if !seen.Insert(name) {
			continue
		}
		if _, ok := props[name]; !ok {
			continue
		}
		if everyContains(others, name) {
			res = append(res, name)
		}
	}
	return res
}

func everyContains(sets []*set.Set[string], name string) bool {
	for _, s := range sets {
		if !s.Contains(name) {
			return false
		}
	}
	return true
}

func joinAdditional(group []Schema, opts Options) *bool {
	allFalse, anyTrue := true, false
	for _, m := range group {
		ap := m.AsObject().AdditionalProperties
		if permissive(ap) {
			allFalse = false
		}
		if ap != nil && *ap {
			anyTrue = true
		}
	}

	switch {
	case allFalse:
		return Bool(false)
	case anyTrue && opts.MergeToLessRestrictive:
		return Bool(true)
	}
	return nil
}
