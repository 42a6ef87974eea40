package jsonschema

import (
	"fmt"
)

// Kind is the JSON type a schema node describes.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
)

// numKinds is the bucket count used by Combine.
const numKinds = int(KindObject) + 1

var kindNames = [numKinds]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a JSON Schema type name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrUnsupportedSchema, s)
}

func (k Kind) isPrimitive() bool {
	return k != KindArray && k != KindObject
}

type SchemaKind int

const (
	SchemaKindObject SchemaKind = 1
	SchemaKindArray  SchemaKind = 2
	SchemaKindValue  SchemaKind = 3
	SchemaKindUnion  SchemaKind = 4
	SchemaKindAnyOf  SchemaKind = 5
)

// Schema is one node of a schema tree. Nodes are never modified once they have been
// returned by this package; every join allocates new nodes.
type Schema interface {
	Kind() SchemaKind
	AsObject() *ObjectSchema
	AsArray() *ArraySchema
	AsValue() *ValueSchema
	AsUnion() *UnionSchema
	AsAnyOf() *AnyOfSchema
}

// ValueSchema is a primitive: null, boolean, integer, number or string.
type ValueSchema struct {
	Type     Kind
	Nullable *bool
}

func (v *ValueSchema) Kind() SchemaKind {
	return SchemaKindValue
}

func (v *ValueSchema) AsObject() *ObjectSchema {
	panic("value is not an object")
}

func (v *ValueSchema) AsArray() *ArraySchema {
	panic("value is not an array")
}

func (v *ValueSchema) AsValue() *ValueSchema {
	return v
}

func (v *ValueSchema) AsUnion() *UnionSchema {
	panic("value is not a union")
}

func (v *ValueSchema) AsAnyOf() *AnyOfSchema {
	panic("value is not an anyOf")
}

// ArraySchema with a nil Items accepts elements of any type.
type ArraySchema struct {
	Items    Schema
	MinItems *int
	Nullable *bool
}

func (a *ArraySchema) Kind() SchemaKind {
	return SchemaKindArray
}

func (a *ArraySchema) AsObject() *ObjectSchema {
	panic("array is not an object")
}

func (a *ArraySchema) AsArray() *ArraySchema {
	return a
}

func (a *ArraySchema) AsValue() *ValueSchema {
	panic("array is not a value")
}

func (a *ArraySchema) AsUnion() *UnionSchema {
	panic("array is not a union")
}

func (a *ArraySchema) AsAnyOf() *AnyOfSchema {
	panic("array is not an anyOf")
}

// ObjectSchema keeps Properties and Required nil when they are absent on the wire; an
// empty non-nil value is serialized as {} or [].
type ObjectSchema struct {
	Properties           map[string]Schema
	Required             []string
	AdditionalProperties *bool
	Nullable             *bool
}

func (o *ObjectSchema) Kind() SchemaKind {
	return SchemaKindObject
}

func (o *ObjectSchema) AsObject() *ObjectSchema {
	return o
}

func (o *ObjectSchema) AsArray() *ArraySchema {
	panic("object is not an array")
}

func (o *ObjectSchema) AsValue() *ValueSchema {
	panic("object is not a value")
}

func (o *ObjectSchema) AsUnion() *UnionSchema {
	panic("object is not a union")
}

func (o *ObjectSchema) AsAnyOf() *AnyOfSchema {
	panic("object is not an anyOf")
}

// UnionSchema is the compact `type: [...]` form. Array and object kinds in Types stand
// for the bare containers {type: array} and {type: object}.
type UnionSchema struct {
	Types    []Kind
	Nullable *bool
}

func (u *UnionSchema) Kind() SchemaKind {
	return SchemaKindUnion
}

func (u *UnionSchema) AsObject() *ObjectSchema {
	panic("union is not an object")
}

func (u *UnionSchema) AsArray() *ArraySchema {
	panic("union is not an array")
}

func (u *UnionSchema) AsValue() *ValueSchema {
	panic("union is not a value")
}

func (u *UnionSchema) AsUnion() *UnionSchema {
	return u
}

func (u *UnionSchema) AsAnyOf() *AnyOfSchema {
	panic("union is not an anyOf")
}

// AnyOfSchema is the general `anyOf` form.
type AnyOfSchema struct {
	Schemas []Schema
}

func (a *AnyOfSchema) Kind() SchemaKind {
	return SchemaKindAnyOf
}

func (a *AnyOfSchema) AsObject() *ObjectSchema {
	panic("anyOf is not an object")
}

func (a *AnyOfSchema) AsArray() *ArraySchema {
	panic("anyOf is not an array")
}

func (a *AnyOfSchema) AsValue() *ValueSchema {
	panic("anyOf is not a value")
}

func (a *AnyOfSchema) AsUnion() *UnionSchema {
	panic("anyOf is not a union")
}

func (a *AnyOfSchema) AsAnyOf() *AnyOfSchema {
	return a
}

func NewValueSchema(k Kind) *ValueSchema {
	return &ValueSchema{Type: k}
}

func NewArraySchema(items Schema) *ArraySchema {
	return &ArraySchema{Items: items}
}

func NewObjectSchema(props map[string]Schema, required []string) *ObjectSchema {
	return &ObjectSchema{Properties: props, Required: required}
}

func NewUnionSchema(types ...Kind) *UnionSchema {
	return &UnionSchema{Types: types}
}

func NewAnyOfSchema(schemas ...Schema) *AnyOfSchema {
	return &AnyOfSchema{Schemas: schemas}
}

// Bool returns a pointer to b, for the optional flags on schema nodes.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}

// typeOf is the kind of a node that Unwrap can return.
func typeOf(s Schema) Kind {
	switch s.Kind() {
	case SchemaKindValue:
		return s.AsValue().Type
	case SchemaKindArray:
		return KindArray
	case SchemaKindObject:
		return KindObject
	}
	panic(fmt.Sprintf("schema kind %d has no single type", s.Kind()))
}

func nullableOf(s Schema) *bool {
	switch s.Kind() {
	case SchemaKindValue:
		return s.AsValue().Nullable
	case SchemaKindArray:
		return s.AsArray().Nullable
	case SchemaKindObject:
		return s.AsObject().Nullable
	case SchemaKindUnion:
		return s.AsUnion().Nullable
	}
	return nil
}

// withNullable returns a shallow copy of s carrying n.
func withNullable(s Schema, n *bool) Schema {
	switch s.Kind() {
	case SchemaKindValue:
		c := *s.AsValue()
		c.Nullable = n
		return &c
	case SchemaKindArray:
		c := *s.AsArray()
		c.Nullable = n
		return &c
	case SchemaKindObject:
		c := *s.AsObject()
		c.Nullable = n
		return &c
	case SchemaKindUnion:
		c := *s.AsUnion()
		c.Nullable = n
		return &c
	}
	return s
}

// isSimple reports whether s carries nothing but its type and nullability, so that it
// can be folded into a `type: [...]` list.
func isSimple(s Schema) bool {
	switch s.Kind() {
	case SchemaKindValue:
		return true
	case SchemaKindArray:
		a := s.AsArray()
		return a.Items == nil && a.MinItems == nil
	case SchemaKindObject:
		o := s.AsObject()
		return o.Properties == nil && o.Required == nil && o.AdditionalProperties == nil
	}
	return false
}

// bare builds the simple node for kind k.
func bare(k Kind, nullable *bool) Schema {
	switch k {
	case KindArray:
		return &ArraySchema{Nullable: nullable}
	case KindObject:
		return &ObjectSchema{Nullable: nullable}
	}
	return &ValueSchema{Type: k, Nullable: nullable}
}

// permissive reads an optional flag where absence means true.
func permissive(b *bool) bool {
	return b == nil || *b
}
