package jsonschema

// repack turns resolved alternatives, already in bucket order, back into the compact
// `type: [...]` form when possible and into `anyOf` otherwise. Simple alternatives are
// folded into one list; under RestrictiveNulls a simple alternative whose nullability
// differs from the list's stays a separate alternative.
func repack(nodes []Schema, opts Options) Schema {
	var kinds []Kind
	var nullable *bool
	var complex []Schema

	for _, n := range nodes {
		if !isSimple(n) {
			complex = append(complex, n)
			continue
		}

		nn := nullableOf(n)
		switch {
		case len(kinds) == 0:
			nullable = nn
		case opts.RestrictiveNulls:
			if !sameFlag(nullable, nn) {
				complex = append(complex, n)
				continue
			}
		default:
			nullable = foldNullable(nullable, nn)
		}
		kinds = append(kinds, typeOf(n))
	}

	var folded Schema
	switch len(kinds) {
	case 0:
	case 1:
		folded = bare(kinds[0], nullable)
	default:
		folded = &UnionSchema{Types: kinds, Nullable: nullable}
	}

	if len(complex) == 0 {
		return folded
	}
	if folded == nil && len(complex) == 1 {
		return complex[0]
	}

	alts := make([]Schema, 0, len(complex)+1)
	if folded != nil {
		alts = append(alts, folded)
	}
	return &AnyOfSchema{Schemas: append(alts, complex...)}
}

func sameFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// foldNullable keeps an explicit false only when both sides are false.
func foldNullable(a, b *bool) *bool {
	if a != nil && !*a && b != nil && !*b {
		return Bool(false)
	}
	return nil
}
