package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func merge(t *testing.T, opts Options, docs ...string) Schema {
	t.Helper()
	ss := make([]Schema, len(docs))
	for i, doc := range docs {
		ss[i] = mustUnmarshal(t, doc)
	}
	return MergeSchemas(ss, opts)
}

func TestUnwrap(t *testing.T) {
	s := mustUnmarshal(t, `{"anyOf":[{"type":["null","string"],"nullable":false},{"anyOf":[{"type":"array"}]}]}`)
	nodes := Unwrap(s)
	require.Len(t, nodes, 3)
	assertSchema(t, `{"type":"null","nullable":false}`, nodes[0])
	assertSchema(t, `{"type":"string","nullable":false}`, nodes[1])
	assertSchema(t, `{"type":"array"}`, nodes[2])

	assert.Nil(t, Unwrap(nil))
}

func TestCombineEmpty(t *testing.T) {
	assert.Nil(t, Combine(nil, Options{}))
}

func TestMergeSimple(t *testing.T) {
	s := merge(t, Options{}, `{"type":"number"}`, `{"type":"string"}`)
	assertSchema(t, `{"type":["number","string"]}`, s)
}

func TestMergeMoreThanTwo(t *testing.T) {
	s := merge(t, Options{}, `{"type":"number"}`, `{"type":"string"}`, `{"type":"boolean"}`)
	assertSchema(t, `{"type":["boolean","number","string"]}`, s)
}

func TestMergeIntegerAbsorbedByNumber(t *testing.T) {
	s := merge(t, Options{}, `{"type":["integer","string"]}`, `{"type":"number"}`)
	assertSchema(t, `{"type":["number","string"]}`, s)
}

func TestMergeArraySchemas(t *testing.T) {
	s := merge(t, Options{},
		`{"type":"array","items":{"anyOf":[{"type":["number","string"]},{"type":"array"}]}}`,
		`{"type":"string"}`,
	)
	assertSchema(t, `{
		"anyOf": [
			{"type": "string"},
			{"type": "array", "items": {"type": ["number", "string", "array"]}}
		]
	}`, s)
}

func TestMergeObjectSchemas(t *testing.T) {
	s := merge(t, Options{},
		`{"type":"object"}`,
		`{"type":"object","properties":{"prop1":{"type":"string"}}}`,
	)
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":"string"}}}`, s)
}

func TestMergeArrays(t *testing.T) {
	s := merge(t, Options{},
		`{"type":"array","items":{"type":"string"}}`,
		`{"type":"array","items":{"type":"number"}}`,
	)
	assertSchema(t, `{"type":"array","items":{"type":["number","string"]}}`, s)
}

func TestMergeArraysMinItems(t *testing.T) {
	a := `{"type":"array","items":{"type":"string"},"minItems":4}`
	b := `{"type":"array","items":{"type":"number"},"minItems":2}`

	s := merge(t, Options{}, a, b)
	assertSchema(t, `{"type":"array","items":{"type":["number","string"]},"minItems":2}`, s)

	s = merge(t, Options{MinItemsOverride: Int(1)}, a, b)
	assertSchema(t, `{"type":"array","items":{"type":["number","string"]},"minItems":1}`, s)

	s = merge(t, Options{MinItemsOverride: Int(1)}, a, `{"type":"array","items":{"type":"number"}}`)
	assertSchema(t, `{"type":"array","items":{"type":["number","string"]}}`, s)
}

func TestMergeNullableFalseBoth(t *testing.T) {
	s := merge(t, Options{}, `{"type":"number","nullable":false}`, `{"type":"string","nullable":false}`)
	assertSchema(t, `{"type":["number","string"],"nullable":false}`, s)
}

func TestMergeNullableFalseOne(t *testing.T) {
	s := merge(t, Options{}, `{"type":"number","nullable":false}`, `{"type":"string"}`)
	assertSchema(t, `{"type":["number","string"]}`, s)
}

func TestMergeNullableFalseOneRestrictive(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true}, `{"type":"number","nullable":false}`, `{"type":"string"}`)
	assertSchema(t, `{"anyOf":[{"type":"number","nullable":false},{"type":"string"}]}`, s)
}

func TestMergeNullableFalseArrays(t *testing.T) {
	s := merge(t, Options{MinItemsOverride: Int(1)},
		`{"type":"array","items":{"type":"string"},"nullable":false}`,
		`{"type":"array","items":{"type":"number"},"nullable":false}`,
	)
	assertSchema(t, `{"type":"array","items":{"type":["number","string"]},"nullable":false}`, s)
}

func TestMergeNullableDifferenceArraysRestrictive(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"array","items":{"type":"string"},"nullable":false}`,
		`{"type":"array","items":{"type":"number"},"nullable":true}`,
	)
	assertSchema(t, `{
		"anyOf": [
			{"type": "array", "items": {"type": "string"}, "nullable": false},
			{"type": "array", "items": {"type": "number"}}
		]
	}`, s)
}

func TestMergeNullableDifferenceArraysRestrictiveSameItems(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"array","items":{"type":"string"},"nullable":false}`,
		`{"type":"array","items":{"type":"string"},"nullable":true}`,
	)
	assertSchema(t, `{"type":"array","items":{"type":"string"},"nullable":false}`, s)
}

func TestMergeNullableDifferenceLessRestrictive(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true, MergeToLessRestrictive: true},
		`{"type":"array","items":{"type":"string"},"nullable":false}`,
		`{"type":"array","items":{"type":"string"},"nullable":true}`,
	)
	assertSchema(t, `{"type":"array","items":{"type":"string"}}`, s)
}

func TestMergeNullableFalseObjects(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"object","properties":{"prop1":{"type":"string"}},"nullable":false}`,
		`{"type":"object","properties":{"prop1":{"type":"number"}},"nullable":false}`,
	)
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":["number","string"]}},"nullable":false}`, s)
}

func TestMergeNullableDifferenceObjectsRestrictive(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"object","properties":{"prop1":{"type":"string"}},"nullable":false}`,
		`{"type":"object","properties":{"prop1":{"type":"integer"}},"nullable":true}`,
	)
	assertSchema(t, `{
		"anyOf": [
			{"type": "object", "properties": {"prop1": {"type": "string"}}, "nullable": false},
			{"type": "object", "properties": {"prop1": {"type": "integer"}}}
		]
	}`, s)
}

func TestMergeNullableDifferenceObjectsRestrictiveIdentical(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"object","properties":{"p":{"type":"string"}},"nullable":false}`,
		`{"type":"object","properties":{"p":{"type":"string"}},"nullable":true}`,
	)
	assertSchema(t, `{"type":"object","properties":{"p":{"type":"string"}},"nullable":false}`, s)
}

func TestMergeNullableDifferenceProperties(t *testing.T) {
	a := `{"type":"object","properties":{"prop1":{"type":"string","nullable":false}}}`
	b := `{"type":"object","properties":{"prop1":{"type":"string","nullable":true}}}`

	s := merge(t, Options{RestrictiveNulls: true}, a, b)
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":"string","nullable":false}}}`, s)

	s = merge(t, Options{}, a, b)
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":"string"}}}`, s)
}

func TestMergeAdditionalProperties(t *testing.T) {
	obj := func(typ, ap string) string {
		return `{"type":"object","properties":{"prop1":{"type":"` + typ + `"}},"additionalProperties":` + ap + `}`
	}

	s := merge(t, Options{}, obj("string", "true"), obj("integer", "true"))
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":["integer","string"]}}}`, s)

	s = merge(t, Options{}, obj("string", "false"), obj("integer", "false"))
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":["integer","string"]}},"additionalProperties":false}`, s)

	s = merge(t, Options{}, obj("string", "true"), obj("integer", "false"))
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":["integer","string"]}}}`, s)

	s = merge(t, Options{MergeToLessRestrictive: true}, obj("string", "true"), obj("integer", "false"))
	assertSchema(t, `{"type":"object","properties":{"prop1":{"type":["integer","string"]}},"additionalProperties":true}`, s)
}

func TestMergeLessRestrictiveDropsStructure(t *testing.T) {
	opts := Options{MergeToLessRestrictive: true}

	s := merge(t, opts, `{"type":"array"}`, `{"type":"array","items":{"type":"string"}}`)
	assertSchema(t, `{"type":"array"}`, s)

	s = merge(t, opts, `{"type":"object"}`, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`)
	assertSchema(t, `{"type":"object"}`, s)
}

func TestMergeRequiredIntersection(t *testing.T) {
	s := merge(t, Options{},
		`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"}},"required":["b","a"]}`,
		`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"},"c":{"type":"string"}},"required":["a","b","c"]}`,
	)
	assertSchema(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}, "b": {"type": "string"}, "c": {"type": "string"}},
		"required": ["b", "a"]
	}`, s)

	s = merge(t, Options{NoRequired: true},
		`{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
		`{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
	)
	assertSchema(t, `{"type":"object","properties":{"a":{"type":"string"}}}`, s)
}

func TestMergeRepackRoutesNullableMismatch(t *testing.T) {
	s := merge(t, Options{RestrictiveNulls: true},
		`{"type":"null","nullable":true}`,
		`{"type":"boolean"}`,
		`{"type":"string","nullable":false}`,
	)
	assertSchema(t, `{"anyOf":[{"type":["null","boolean"]},{"type":"string","nullable":false}]}`, s)
}

func TestExtendSchema(t *testing.T) {
	s, err := ExtendSchema(mustUnmarshal(t, `{"type":"number"}`), "some string", Options{})
	require.NoError(t, err)
	assertSchema(t, `{"type":["number","string"]}`, s)

	s, err = ExtendSchema(mustUnmarshal(t, `{"type":"array","items":{"anyOf":[{"type":["number","string"]},{"type":"array"}]}}`), "some string", Options{})
	require.NoError(t, err)
	assertSchema(t, `{
		"anyOf": [
			{"type": "string"},
			{"type": "array", "items": {"type": ["number", "string", "array"]}}
		]
	}`, s)

	s, err = ExtendSchema(nil, true, Options{})
	require.NoError(t, err)
	assertSchema(t, `{"type":"boolean"}`, s)
}

func TestCreateCompoundSchema(t *testing.T) {
	values := []any{
		map[string]any{"age": 35},
		map[string]any{"age": 19, "name": "John"},
		map[string]any{"age": 23, "admin": true},
	}
	s, err := CreateCompoundSchema(values, Options{})
	require.NoError(t, err)
	assertSchema(t, `{
		"type": "object",
		"properties": {"admin": {"type": "boolean"}, "age": {"type": "integer"}, "name": {"type": "string"}},
		"required": ["age"]
	}`, s)

	s, err = CreateCompoundSchema(nil, Options{})
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestCombineDoesNotModifyInputs(t *testing.T) {
	doc := `{"type":"object","properties":{"a":{"type":["integer","string"]}},"required":["a"],"nullable":false}`
	a := mustUnmarshal(t, doc)
	b := mustUnmarshal(t, `{"type":"object","properties":{"a":{"type":"number"}}}`)

	Combine([]Schema{a, b}, Options{RestrictiveNulls: true})
	Combine([]Schema{a, b}, Options{})
	assert.JSONEq(t, doc, string(Marshal(a)))
}
