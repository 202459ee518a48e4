package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI renders s as an OpenAPI 3 schema.
func (s Schema) OpenAPI() *openapi3.Schema {
	var out *openapi3.Schema

	switch s.Type {
	case TypeString:
		out = openapi3.NewStringSchema()
	case TypeNumber:
		out = openapi3.NewFloat64Schema()
	case TypeInteger:
		out = openapi3.NewInt64Schema()
	case TypeBoolean:
		out = openapi3.NewBoolSchema()
	case TypeArray:
		out = openapi3.NewArraySchema()
		if s.Items != nil {
			out.WithItems(s.Items.OpenAPI())
		}
	case TypeObject:
		out = openapi3.NewObjectSchema()
		for _, p := range s.Properties {
			out.WithProperty(p.Name, p.Schema.OpenAPI())
		}
		out.Required = s.RequiredNames()
		if s.Rejects() {
			out.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}
		}
	default:
		out = &openapi3.Schema{}
	}

	out.Description = s.Description
	return out
}
