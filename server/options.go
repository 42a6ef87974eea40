package server

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/siegeai/schemagen/jsonschema"
)

// parseOptions reads jsonschema.Options from query parameters. Absent parameters keep
// the zero value; additional_properties and min_items are only set when present.
func parseOptions(q url.Values) (jsonschema.Options, error) {
	var opts jsonschema.Options
	flags := []struct {
		name string
		dst  *bool
	}{
		{"no_required", &opts.NoRequired},
		{"restrictive_arrays", &opts.RestrictiveArrays},
		{"restrictive_nulls", &opts.RestrictiveNulls},
		{"merge_to_less_restrictive", &opts.MergeToLessRestrictive},
		{"ignore_required", &opts.IgnoreRequired},
		{"subset_required", &opts.SubsetRequired},
	}
	for _, f := range flags {
		if !q.Has(f.name) {
			continue
		}
		b, err := parseFlag(q.Get(f.name))
		if err != nil {
			return opts, fmt.Errorf("%w: %s: %v", errBadRequest, f.name, err)
		}
		*f.dst = b
	}

	if q.Has("additional_properties") {
		b, err := parseFlag(q.Get("additional_properties"))
		if err != nil {
			return opts, fmt.Errorf("%w: additional_properties: %v", errBadRequest, err)
		}
		opts.AdditionalProperties = jsonschema.Bool(b)
	}

	if q.Has("min_items") {
		n, err := strconv.Atoi(q.Get("min_items"))
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: min_items must be a non-negative integer", errBadRequest)
		}
		opts.MinItemsOverride = jsonschema.Int(n)
	}

	return opts, nil
}

// parseFlag treats a bare parameter (?restrictive_nulls) as true.
func parseFlag(s string) (bool, error) {
	if s == "" {
		return true, nil
	}
	return strconv.ParseBool(s)
}
