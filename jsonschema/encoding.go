package jsonschema

import (
	"fmt"
	"sort"

	"github.com/valyala/fastjson"
)

// Marshal encodes s using the JSON Schema keywords type, items, properties, required,
// anyOf, additionalProperties, nullable and minItems. Absent fields stay absent. A nil
// schema encodes as null.
func Marshal(s Schema) []byte {
	var a fastjson.Arena
	return encode(&a, s, false).MarshalTo(nil)
}

// fingerprint is a canonical encoding: two schemas with the same fingerprint are
// structurally identical.
func fingerprint(s Schema) string {
	var a fastjson.Arena
	return string(encode(&a, s, true).MarshalTo(nil))
}

func identical(a, b Schema) bool {
	return fingerprint(a) == fingerprint(b)
}

func encode(a *fastjson.Arena, s Schema, canonical bool) *fastjson.Value {
	if s == nil {
		return a.NewNull()
	}

	o := a.NewObject()
	switch s.Kind() {
	case SchemaKindValue:
		v := s.AsValue()
		o.Set("type", a.NewString(v.Type.String()))
		setFlag(a, o, "nullable", v.Nullable)

	case SchemaKindUnion:
		u := s.AsUnion()
		types := a.NewArray()
		for i, k := range u.Types {
			types.SetArrayItem(i, a.NewString(k.String()))
		}
		o.Set("type", types)
		setFlag(a, o, "nullable", u.Nullable)

	case SchemaKindArray:
		arr := s.AsArray()
		o.Set("type", a.NewString(KindArray.String()))
		if arr.Items != nil {
			o.Set("items", encode(a, arr.Items, canonical))
		}
		setFlag(a, o, "nullable", arr.Nullable)
		if arr.MinItems != nil {
			o.Set("minItems", a.NewNumberInt(*arr.MinItems))
		}

	case SchemaKindObject:
		obj := s.AsObject()
		o.Set("type", a.NewString(KindObject.String()))
		if obj.Properties != nil {
			props := a.NewObject()
			for _, name := range sortedKeys(obj.Properties) {
				props.Set(name, encode(a, obj.Properties[name], canonical))
			}
			o.Set("properties", props)
		}
		if obj.Required != nil {
			required := obj.Required
			if canonical {
				required = append([]string(nil), required...)
				sort.Strings(required)
			}
			names := a.NewArray()
			for i, name := range required {
				names.SetArrayItem(i, a.NewString(name))
			}
			o.Set("required", names)
		}
		setFlag(a, o, "additionalProperties", obj.AdditionalProperties)
		setFlag(a, o, "nullable", obj.Nullable)

	case SchemaKindAnyOf:
		alts := a.NewArray()
		for i, alt := range s.AsAnyOf().Schemas {
			alts.SetArrayItem(i, encode(a, alt, canonical))
		}
		o.Set("anyOf", alts)
	}
	return o
}

func setFlag(a *fastjson.Arena, o *fastjson.Value, key string, b *bool) {
	if b == nil {
		return
	}
	if *b {
		o.Set(key, a.NewTrue())
	} else {
		o.Set(key, a.NewFalse())
	}
}

func sortedKeys(m map[string]Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unmarshal decodes a schema previously produced by Marshal, or any JSON Schema limited
// to the same keywords. The literal null decodes to a nil Schema.
func Unmarshal(b []byte) (Schema, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return FromFastJSON(v)
}

// FromFastJSON decodes a schema from an already parsed JSON value.
func FromFastJSON(v *fastjson.Value) (Schema, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeObject:
	default:
		return nil, fmt.Errorf("%w: expected object, got %s", ErrUnsupportedSchema, v.Type())
	}

	if anyOf := v.Get("anyOf"); anyOf != nil {
		alts, err := anyOf.Array()
		if err != nil {
			return nil, fmt.Errorf("%w: anyOf: %v", ErrUnsupportedSchema, err)
		}
		res := &AnyOfSchema{Schemas: make([]Schema, 0, len(alts))}
		for _, alt := range alts {
			s, err := FromFastJSON(alt)
			if err != nil {
				return nil, err
			}
			if s != nil {
				res.Schemas = append(res.Schemas, s)
			}
		}
		return res, nil
	}

	nullable, err := decodeFlag(v, "nullable")
	if err != nil {
		return nil, err
	}

	t := v.Get("type")
	if t == nil {
		return nil, fmt.Errorf("%w: missing type", ErrUnsupportedSchema)
	}
	switch t.Type() {
	case fastjson.TypeString:
		k, err := ParseKind(string(t.GetStringBytes()))
		if err != nil {
			return nil, err
		}
		return decodeTyped(k, v, nullable)

	case fastjson.TypeArray:
		names := t.GetArray()
		kinds := make([]Kind, 0, len(names))
		for _, name := range names {
			k, err := ParseKind(string(name.GetStringBytes()))
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
		switch len(kinds) {
		case 0:
			return nil, fmt.Errorf("%w: empty type list", ErrUnsupportedSchema)
		case 1:
			return decodeTyped(kinds[0], v, nullable)
		}
		return &UnionSchema{Types: kinds, Nullable: nullable}, nil
	}
	return nil, fmt.Errorf("%w: type must be a string or a list", ErrUnsupportedSchema)
}

func decodeTyped(k Kind, v *fastjson.Value, nullable *bool) (Schema, error) {
	switch k {
	case KindArray:
		res := &ArraySchema{Nullable: nullable}
		if items := v.Get("items"); items != nil {
			s, err := FromFastJSON(items)
			if err != nil {
				return nil, fmt.Errorf("items: %w", err)
			}
			res.Items = s
		}
		if minItems := v.Get("minItems"); minItems != nil {
			n, err := minItems.Int()
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: minItems must be a non-negative integer", ErrUnsupportedSchema)
			}
			res.MinItems = Int(n)
		}
		return res, nil

	case KindObject:
		res := &ObjectSchema{Nullable: nullable}
		if props := v.Get("properties"); props != nil {
			o, err := props.Object()
			if err != nil {
				return nil, fmt.Errorf("%w: properties: %v", ErrUnsupportedSchema, err)
			}
			res.Properties = make(map[string]Schema, o.Len())
			var visitErr error
			o.Visit(func(key []byte, pv *fastjson.Value) {
				if visitErr != nil {
					return
				}
				s, err := FromFastJSON(pv)
				if err != nil {
					visitErr = fmt.Errorf("properties.%s: %w", key, err)
					return
				}
				res.Properties[string(key)] = s
			})
			if visitErr != nil {
				return nil, visitErr
			}
		}
		if required := v.Get("required"); required != nil {
			names, err := required.Array()
			if err != nil {
				return nil, fmt.Errorf("%w: required: %v", ErrUnsupportedSchema, err)
			}
			res.Required = make([]string, 0, len(names))
			for _, name := range names {
				b, err := name.StringBytes()
				if err != nil {
					return nil, fmt.Errorf("%w: required: %v", ErrUnsupportedSchema, err)
				}
				res.Required = append(res.Required, string(b))
			}
		}
		ap, err := decodeFlag(v, "additionalProperties")
		if err != nil {
			return nil, err
		}
		res.AdditionalProperties = ap
		return res, nil
	}

	return &ValueSchema{Type: k, Nullable: nullable}, nil
}

func decodeFlag(v *fastjson.Value, key string) (*bool, error) {
	f := v.Get(key)
	if f == nil {
		return nil, nil
	}
	switch f.Type() {
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	}
	return nil, fmt.Errorf("%w: %s must be a boolean", ErrUnsupportedSchema, key)
}

func (v *ValueSchema) MarshalJSON() ([]byte, error) {
	return Marshal(v), nil
}

func (a *ArraySchema) MarshalJSON() ([]byte, error) {
	return Marshal(a), nil
}

func (o *ObjectSchema) MarshalJSON() ([]byte, error) {
	return Marshal(o), nil
}

func (u *UnionSchema) MarshalJSON() ([]byte, error) {
	return Marshal(u), nil
}

func (a *AnyOfSchema) MarshalJSON() ([]byte, error) {
	return Marshal(a), nil
}

// Document carries a Schema through encoding/json values such as request bodies.
type Document struct {
	Schema Schema
}

func (d Document) MarshalJSON() ([]byte, error) {
	return Marshal(d.Schema), nil
}

func (d *Document) UnmarshalJSON(b []byte) error {
	s, err := Unmarshal(b)
	if err != nil {
		return err
	}
	d.Schema = s
	return nil
}
