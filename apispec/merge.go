package apispec

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Overlay lays the generated component schemas over base. Everything else comes from
// base; a generated schema replaces a base schema of the same name. Neither input is
// modified.
func Overlay(base, generated *openapi3.T) *openapi3.T {
	if base == nil && generated == nil {
		return nil
	}
	if base != nil && generated == nil {
		return base
	}
	if base == nil && generated != nil {
		return generated
	}

	doc := *base
	doc.OpenAPI = mergeString(base.OpenAPI, generated.OpenAPI)
	doc.Info = mergeInfo(base.Info, generated.Info)
	if doc.Paths == nil {
		doc.Paths = openapi3.Paths{}
	}
	doc.Components = mergeComponents(base.Components, generated.Components)
	return &doc
}

func mergeInfo(a, b *openapi3.Info) *openapi3.Info {
	if a == nil {
		return b
	}
	return a
}

func mergeComponents(a, b *openapi3.Components) *openapi3.Components {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b == nil {
		return a
	}
	if a == nil && b != nil {
		return b
	}

	c := *a
	c.Schemas = mergeSchemas(a.Schemas, b.Schemas)
	return &c
}

func mergeSchemas(a, b openapi3.Schemas) openapi3.Schemas {
	rs := make(openapi3.Schemas, len(a)+len(b))
	for k, v := range a {
		rs[k] = v
	}
	for k, v := range b {
		rs[k] = v
	}
	return rs
}

// mergeString keeps a unless it is empty.
func mergeString(a, b string) string {
	if a == "" {
		return b
	}
	return a
}
