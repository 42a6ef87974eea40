package jsonschema

// CreateSchema builds the schema of a single value. A nil value gives the null schema.
// The only error for in-memory values is a *CircularReferenceError; values that pass
// through encoding/json may also fail to encode.
func CreateSchema(v any, opts Options) (Schema, error) {
	return newClassifier(opts).classify(v, "$")
}

// MergeSchemas joins schemas into one that accepts everything any of them accepts.
func MergeSchemas(schemas []Schema, opts Options) Schema {
	return Combine(schemas, opts)
}

// ExtendSchema widens s so that it also accepts v. A nil s is treated as no schema yet.
func ExtendSchema(s Schema, v any, opts Options) (Schema, error) {
	next, err := CreateSchema(v, opts)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return next, nil
	}
	return Combine([]Schema{s, next}, opts), nil
}

// CreateCompoundSchema builds one schema accepting every value in values, as if they
// were the elements of an array. An empty list gives nil.
func CreateCompoundSchema(values []any, opts Options) (Schema, error) {
	c := newClassifier(opts)
	ss := make([]Schema, len(values))
	for i, v := range values {
		s, err := c.classify(v, "$")
		if err != nil {
			return nil, err
		}
		ss[i] = s
	}
	return Combine(ss, opts), nil
}
