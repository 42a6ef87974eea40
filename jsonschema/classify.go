package jsonschema

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/valyala/fastjson"
)

// classifier turns one value into a schema. visiting holds the maps, slices and
// pointers on the path from the root to the value being classified.
type classifier struct {
	opts     Options
	visiting map[visitKey]struct{}
}

type visitKey struct {
	kind reflect.Kind
	ptr  uintptr
}

func newClassifier(opts Options) *classifier {
	return &classifier{opts: opts, visiting: make(map[visitKey]struct{})}
}

func (c *classifier) classify(v any, path string) (Schema, error) {
	switch t := v.(type) {
	case nil:
		return c.null(), nil
	case bool:
		return c.leaf(KindBoolean), nil
	case string:
		return c.leaf(KindString), nil
	case float64:
		return c.number(t), nil
	case float32:
		return c.number(float64(t)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return c.leaf(KindInteger), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at %s: %w", t, path, err)
		}
		return c.number(f), nil
	case json.RawMessage:
		// encoding/json writes a nil RawMessage as null
		if len(t) == 0 {
			return c.null(), nil
		}
		return c.parse(t, path)
	case []byte:
		// encoded as a base64 string
		return c.leaf(KindString), nil
	case *fastjson.Value:
		if t == nil {
			return c.null(), nil
		}
		return c.fastValue(t), nil
	case json.Marshaler, encoding.TextMarshaler:
		return c.roundTrip(v, path)
	}
	return c.reflectValue(reflect.ValueOf(v), path)
}

func (c *classifier) reflectValue(rv reflect.Value, path string) (Schema, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return c.null(), nil

	case reflect.Bool:
		return c.leaf(KindBoolean), nil

	case reflect.String:
		return c.leaf(KindString), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return c.leaf(KindInteger), nil

	case reflect.Float32, reflect.Float64:
		return c.number(rv.Float()), nil

	case reflect.Interface:
		if rv.IsNil() {
			return c.null(), nil
		}
		return c.classify(rv.Elem().Interface(), path)

	case reflect.Pointer:
		if rv.IsNil() {
			return c.null(), nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.classify(rv.Elem().Interface(), path)

	case reflect.Map:
		if rv.IsNil() {
			return c.null(), nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return c.roundTrip(rv.Interface(), path)
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.mapValue(rv, path)

	case reflect.Slice:
		if rv.IsNil() {
			return c.null(), nil
		}
		if rv.Len() == 0 {
			return c.array(nil), nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.sliceValue(rv, path)

	case reflect.Array:
		return c.sliceValue(rv, path)

	case reflect.Struct:
		return c.roundTrip(rv.Interface(), path)
	}

	// funcs, channels, complex numbers and unsafe pointers have no JSON form
	return c.null(), nil
}

func (c *classifier) mapValue(rv reflect.Value, path string) (Schema, error) {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	names := make([]string, 0, len(keys))
	props := make(map[string]Schema, len(keys))
	for _, k := range keys {
		v := rv.MapIndex(k)
		if !isJSONValue(v) {
			continue
		}
		name := k.String()
		child, err := c.classify(v.Interface(), path+"."+name)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		props[name] = child
	}
	return c.object(names, props), nil
}

func (c *classifier) sliceValue(rv reflect.Value, path string) (Schema, error) {
	elems := make([]Schema, rv.Len())
	for i := range elems {
		child, err := c.classify(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		elems[i] = child
	}
	return c.array(elems), nil
}

// enter marks rv as being on the current path and fails on a revisit.
func (c *classifier) enter(rv reflect.Value, path string) (func(), error) {
	key := visitKey{kind: rv.Kind(), ptr: rv.Pointer()}
	if _, ok := c.visiting[key]; ok {
		return nil, &CircularReferenceError{Path: path}
	}
	c.visiting[key] = struct{}{}
	return func() { delete(c.visiting, key) }, nil
}

// roundTrip classifies v through its JSON encoding, for structs and marshalers.
func (c *classifier) roundTrip(v any, path string) (Schema, error) {
	b, err := json.Marshal(v)
	if err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) && strings.Contains(unsupported.Str, "cycle") {
			return nil, &CircularReferenceError{Path: path}
		}
		return nil, fmt.Errorf("cannot encode value at %s: %w", path, err)
	}
	return c.parse(b, path)
}

func (c *classifier) parse(b []byte, path string) (Schema, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}
	return c.fastValue(v), nil
}

func isJSONValue(v reflect.Value) bool {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return false
	}
	return true
}

func (c *classifier) null() Schema {
	n := &ValueSchema{Type: KindNull}
	if c.opts.RestrictiveNulls {
		n.Nullable = Bool(true)
	}
	return n
}

func (c *classifier) notNull() *bool {
	if c.opts.RestrictiveNulls {
		return Bool(false)
	}
	return nil
}

func (c *classifier) leaf(k Kind) Schema {
	return &ValueSchema{Type: k, Nullable: c.notNull()}
}

// number treats any value without a fractional part as an integer, so 1.0 is an
// integer too.
func (c *classifier) number(f float64) Schema {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return c.null()
	}
	if math.Trunc(f) == f {
		return c.leaf(KindInteger)
	}
	return c.leaf(KindNumber)
}

func (c *classifier) array(elems []Schema) Schema {
	a := &ArraySchema{Nullable: c.notNull()}
	if len(elems) == 0 {
		return a
	}
	a.Items = Combine(elems, c.opts)
	if c.opts.RestrictiveArrays {
		n := len(elems)
		if c.opts.MinItemsOverride != nil {
			n = *c.opts.MinItemsOverride
		}
		a.MinItems = Int(n)
	}
	return a
}

func (c *classifier) object(names []string, props map[string]Schema) Schema {
	o := &ObjectSchema{Nullable: c.notNull()}
	if c.opts.AdditionalProperties != nil {
		o.AdditionalProperties = Bool(*c.opts.AdditionalProperties)
	}
	if len(names) == 0 {
		return o
	}
	o.Properties = props
	if !c.opts.NoRequired {
		o.Required = names
	}
	return o
}
