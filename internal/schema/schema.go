// Package schema holds the declarative body/response schemas of a route
// and the two algorithms compiled from them:
//
//   - validation: check + coerce an incoming JSON body (Compiled.Validate)
//   - projection: keep only declared fields of an outgoing value (Compiled.Project)
//
// A Schema is plain data. It can be written with the constructors in this
// package, parsed from YAML (ParseYAML) or reflected from a Go struct
// (FromType). Whatever the source, it is compiled once at route registration
// time and the compiled form is shared read-only by every request.
package schema

// Type is the primitive JSON type of a schema node.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Additional is the policy applied to keys an object schema does not declare.
type Additional string

const (
	// AdditionalAllow ignores undeclared keys (they are still dropped from the
	// validated value). It is the default.
	AdditionalAllow Additional = "allow"

	// AdditionalReject fails validation on the first undeclared key.
	AdditionalReject Additional = "reject"
)

// Schema describes the expected shape of a JSON value.
//
// Properties and Additional only apply to objects, Items only to arrays.
type Schema struct {
	Type        Type       `yaml:"type"`
	Description string     `yaml:"description,omitempty"`
	Properties  []Property `yaml:"properties,omitempty"`
	Additional  Additional `yaml:"additionalProperties,omitempty"`
	Items       *Schema    `yaml:"items,omitempty"`
}

// Property is a named member of an object schema.
type Property struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required,omitempty"`
	Schema   `yaml:",inline"`
}

// Rejects reports whether undeclared keys fail validation.
func (s Schema) Rejects() bool {
	return s.Additional == AdditionalReject
}

// Strict returns a copy of s that rejects undeclared keys.
func (s Schema) Strict() Schema {
	s.Additional = AdditionalReject
	return s
}

// Describe returns a copy of s carrying a description.
func (s Schema) Describe(description string) Schema {
	s.Description = description
	return s
}

// RequiredNames lists the names of the required properties in declaration order.
func (s Schema) RequiredNames() []string {
	var names []string
	for _, p := range s.Properties {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

func String() Schema  { return Schema{Type: TypeString} }
func Number() Schema  { return Schema{Type: TypeNumber} }
func Integer() Schema { return Schema{Type: TypeInteger} }
func Boolean() Schema { return Schema{Type: TypeBoolean} }

// Object builds an object schema with the given properties and the default
// (allow) additional-properties policy.
func Object(props ...Property) Schema {
	return Schema{Type: TypeObject, Properties: props}
}

// Array builds an array schema whose elements follow items.
func Array(items Schema) Schema {
	return Schema{Type: TypeArray, Items: &items}
}

// Field declares an optional property.
func Field(name string, s Schema) Property {
	return Property{Name: name, Schema: s}
}

// Required declares a required property.
func Required(name string, s Schema) Property {
	return Property{Name: name, Required: true, Schema: s}
}
