package schema

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// FromType reflects a Go value (usually a zero struct) into a Schema using
// its json tags. Struct fields without omitempty are required, and structs
// reject undeclared keys unless they opt out with jsonschema tags.
//
//	type StatusResponse struct {
//	    Status string `json:"status"`
//	}
//	s, err := schema.FromType(StatusResponse{})
func FromType(v any) (Schema, error) {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	root := r.Reflect(v)
	if root == nil {
		return Schema{}, fmt.Errorf("reflect %T: no schema produced", v)
	}

	s, err := fromJSONSchema("", root)
	if err != nil {
		return Schema{}, fmt.Errorf("reflect %T: %w", v, err)
	}
	if _, err := Compile(s); err != nil {
		return Schema{}, fmt.Errorf("reflect %T: %w", v, err)
	}
	return s, nil
}

// MustFromType is like FromType but panics on error.
func MustFromType(v any) Schema {
	s, err := FromType(v)
	if err != nil {
		panic(err)
	}
	return s
}

func fromJSONSchema(path string, js *jsonschema.Schema) (Schema, error) {
	s := Schema{Description: js.Description}

	switch js.Type {
	case "string":
		s.Type = TypeString
	case "number":
		s.Type = TypeNumber
	case "integer":
		s.Type = TypeInteger
	case "boolean":
		s.Type = TypeBoolean

	case "array":
		s.Type = TypeArray
		if js.Items != nil {
			items, err := fromJSONSchema(path+"[]", js.Items)
			if err != nil {
				return Schema{}, err
			}
			s.Items = &items
		}

	case "object":
		s.Type = TypeObject
		s.Additional = AdditionalAllow
		if js.AdditionalProperties == jsonschema.FalseSchema {
			s.Additional = AdditionalReject
		}

		required := make(map[string]bool, len(js.Required))
		for _, name := range js.Required {
			required[name] = true
		}

		if js.Properties != nil {
			for pair := js.Properties.Oldest(); pair != nil; pair = pair.Next() {
				child, err := fromJSONSchema(joinPath(path, pair.Key), pair.Value)
				if err != nil {
					return Schema{}, err
				}
				s.Properties = append(s.Properties, Property{
					Name:     pair.Key,
					Required: required[pair.Key],
					Schema:   child,
				})
			}
		}

	default:
		return Schema{}, fmt.Errorf("%s: unsupported JSON schema type %q", describePath(path), js.Type)
	}

	return s, nil
}
