package apispec

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/siegeai/schemagen/jsonschema"
)

var openapiTypes = map[jsonschema.Kind]string{
	jsonschema.KindBoolean: openapi3.TypeBoolean,
	jsonschema.KindInteger: openapi3.TypeInteger,
	jsonschema.KindNumber:  openapi3.TypeNumber,
	jsonschema.KindString:  openapi3.TypeString,
	jsonschema.KindArray:   openapi3.TypeArray,
	jsonschema.KindObject:  openapi3.TypeObject,
}

// FromSchema converts an inferred schema to an OpenAPI 3.0 schema. OpenAPI 3.0 has
// no null type and no type lists, so nulls become nullable flags and type lists
// become anyOf. A nil schema converts to nil.
func FromSchema(s jsonschema.Schema) *openapi3.Schema {
	if s == nil {
		return nil
	}

	switch s.Kind() {
	case jsonschema.SchemaKindValue:
		v := s.AsValue()
		return newTypedSchema(v.Type, isTrue(v.Nullable))

	case jsonschema.SchemaKindUnion:
		return fromUnion(s.AsUnion())

	case jsonschema.SchemaKindArray:
		a := s.AsArray()
		res := newTypedSchema(jsonschema.KindArray, isTrue(a.Nullable))
		if a.Items != nil {
			res.Items = FromSchema(a.Items).NewRef()
		}
		if a.MinItems != nil {
			res.MinItems = uint64(*a.MinItems)
		}
		return res

	case jsonschema.SchemaKindObject:
		o := s.AsObject()
		res := newTypedSchema(jsonschema.KindObject, isTrue(o.Nullable))
		if len(o.Properties) > 0 {
			res.Properties = make(openapi3.Schemas, len(o.Properties))
			for name, p := range o.Properties {
				res.Properties[name] = FromSchema(p).NewRef()
			}
		}
		if len(o.Required) > 0 {
			res.Required = append([]string(nil), o.Required...)
		}
		if o.AdditionalProperties != nil {
			has := *o.AdditionalProperties
			res.AdditionalProperties = openapi3.AdditionalProperties{Has: &has}
		}
		return res

	case jsonschema.SchemaKindAnyOf:
		alts := s.AsAnyOf().Schemas
		res := &openapi3.Schema{AnyOf: make(openapi3.SchemaRefs, 0, len(alts))}
		for _, alt := range alts {
			res.AnyOf = append(res.AnyOf, FromSchema(alt).NewRef())
		}
		return res
	}

	panic("unknown schema kind")
}

func fromUnion(u *jsonschema.UnionSchema) *openapi3.Schema {
	nullable := isTrue(u.Nullable)
	kinds := make([]jsonschema.Kind, 0, len(u.Types))
	for _, k := range u.Types {
		if k == jsonschema.KindNull {
			nullable = true
			continue
		}
		kinds = append(kinds, k)
	}

	switch len(kinds) {
	case 0:
		return newNullSchema()
	case 1:
		return newTypedSchema(kinds[0], nullable)
	}

	res := &openapi3.Schema{Nullable: nullable, AnyOf: make(openapi3.SchemaRefs, len(kinds))}
	for i, k := range kinds {
		res.AnyOf[i] = newTypedSchema(k, false).NewRef()
	}
	return res
}

func newTypedSchema(k jsonschema.Kind, nullable bool) *openapi3.Schema {
	if k == jsonschema.KindNull {
		return newNullSchema()
	}
	res := &openapi3.Schema{Type: openapiTypes[k], Nullable: nullable}
	if k == jsonschema.KindArray {
		// any element type, null included
		res.Items = openapi3.NewSchemaRef("", &openapi3.Schema{Nullable: true})
	}
	return res
}

// newNullSchema has no type: nullable is the only way OpenAPI 3.0 admits null.
func newNullSchema() *openapi3.Schema {
	return &openapi3.Schema{
		Nullable: true,
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
