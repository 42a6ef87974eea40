package jsonschema

import (
	"bytes"

	"github.com/valyala/fastjson"
)

// ParseSampleBytes builds the schema of one JSON document without decoding it into Go
// values first. Required names keep the order keys appear in the document.
func ParseSampleBytes(b []byte, opts Options) (Schema, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return ParseFastJSON(v, opts), nil
}

// ParseFastJSON builds the schema of an already parsed document.
func ParseFastJSON(v *fastjson.Value, opts Options) Schema {
	return newClassifier(opts).fastValue(v)
}

func (c *classifier) fastValue(v *fastjson.Value) Schema {
	switch v.Type() {
	case fastjson.TypeNull:
		return c.null()
	case fastjson.TypeObject:
		return c.fastObject(v.GetObject())
	case fastjson.TypeArray:
		return c.fastArray(v.GetArray())
	case fastjson.TypeString:
		return c.leaf(KindString)
	case fastjson.TypeNumber:
		return c.fastNumber(v)
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return c.leaf(KindBoolean)
	}
	return c.null()
}

func (c *classifier) fastObject(o *fastjson.Object) Schema {
	names := make([]string, 0, o.Len())
	props := make(map[string]Schema, o.Len())
	o.Visit(func(key []byte, v *fastjson.Value) {
		name := string(key)
		if _, dup := props[name]; !dup {
			names = append(names, name)
		}
		// the last duplicate wins, like encoding/json
		props[name] = c.fastValue(v)
	})
	return c.object(names, props)
}

func (c *classifier) fastArray(vs []*fastjson.Value) Schema {
	elems := make([]Schema, len(vs))
	for i, v := range vs {
		elems[i] = c.fastValue(v)
	}
	return c.array(elems)
}

func (c *classifier) fastNumber(v *fastjson.Value) Schema {
	f, err := v.Float64()
	if err != nil {
		// out of float range
		if bytes.ContainsAny(v.MarshalTo(nil), ".eE") {
			return c.leaf(KindNumber)
		}
		return c.leaf(KindInteger)
	}
	return c.number(f)
}
