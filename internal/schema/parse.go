package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseFile parses a schema definition from a YAML file.
func ParseFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return ParseYAML(data)
}

// ParseYAML parses a schema definition from YAML bytes and checks that it
// compiles. Properties are a list so their declaration order is kept:
//
//	type: object
//	additionalProperties: reject
//	properties:
//	  - { name: name, type: number, required: true }
func ParseYAML(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse yaml: %w", err)
	}

	if _, err := Compile(s); err != nil {
		return Schema{}, err
	}

	return s, nil
}

// UnmarshalYAML accepts the policy names as well as JSON Schema's booleans
// (true = allow, false = reject).
func (a *Additional) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		if b {
			*a = AdditionalAllow
		} else {
			*a = AdditionalReject
		}
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("additionalProperties: %w", err)
	}
	*a = Additional(s)
	return nil
}
