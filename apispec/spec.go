package apispec

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/siegeai/schemagen/jsonschema"
)

const openapiVersion = "3.0.3"

var invalidComponentChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// NewDocument builds an OpenAPI document holding one component schema per entry of
// schemas. Names are sanitized to valid component names; when two names collide the
// later one in sorted order gets a numeric suffix.
func NewDocument(title, version string, schemas map[string]jsonschema.Schema) *openapi3.T {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make(openapi3.Schemas, len(schemas))
	for _, name := range names {
		s := FromSchema(schemas[name])
		if s == nil {
			continue
		}
		components[uniqueName(components, ComponentName(name))] = s.NewRef()
	}

	return &openapi3.T{
		OpenAPI:    openapiVersion,
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: components},
	}
}

// ComponentName maps an arbitrary schema name to a valid OpenAPI component name.
func ComponentName(name string) string {
	if name == "" {
		return "_"
	}
	return invalidComponentChars.ReplaceAllString(name, "_")
}

func uniqueName(taken openapi3.Schemas, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
