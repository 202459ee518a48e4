package schema

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Compiled is the immutable, request-independent form of a Schema.
// It is safe for concurrent use.
type Compiled struct {
	root   *node
	source Schema
}

type node struct {
	typ        Type
	props      []*prop
	index      map[string]*prop
	additional Additional
	items      *node
}

type prop struct {
	name     string
	required bool
	node     *node
}

// Compile checks s and builds its compiled form.
func Compile(s Schema) (*Compiled, error) {
	root, err := compileNode("", s)
	if err != nil {
		return nil, err
	}
	return &Compiled{root: root, source: s}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s Schema) *Compiled {
	c, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Schema returns the declaration c was compiled from.
func (c *Compiled) Schema() Schema {
	return c.source
}

// Type returns the root type.
func (c *Compiled) Type() Type {
	return c.root.typ
}

func compileNode(path string, s Schema) (*node, error) {
	err := validation.Errors{
		"type": validation.Validate(s.Type,
			validation.Required,
			validation.In(TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray),
		),
		"additionalProperties": validation.Validate(s.Additional,
			validation.In(AdditionalAllow, AdditionalReject),
		),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", describePath(path), err)
	}

	n := &node{typ: s.Type, additional: s.Additional}
	if n.additional == "" {
		n.additional = AdditionalAllow
	}

	switch s.Type {
	case TypeObject:
		n.index = make(map[string]*prop, len(s.Properties))
		for _, p := range s.Properties {
			if p.Name == "" {
				return nil, fmt.Errorf("schema %s: property with empty name", describePath(path))
			}
			if _, dup := n.index[p.Name]; dup {
				return nil, fmt.Errorf("schema %s: duplicate property %q", describePath(path), p.Name)
			}
			child, err := compileNode(joinPath(path, p.Name), p.Schema)
			if err != nil {
				return nil, err
			}
			cp := &prop{name: p.Name, required: p.Required, node: child}
			n.props = append(n.props, cp)
			n.index[p.Name] = cp
		}

	case TypeArray:
		if s.Items != nil {
			items, err := compileNode(path+"[]", *s.Items)
			if err != nil {
				return nil, err
			}
			n.items = items
		}

	default:
		if len(s.Properties) > 0 {
			return nil, fmt.Errorf("schema %s: properties declared on %s", describePath(path), s.Type)
		}
	}

	return n, nil
}

func describePath(path string) string {
	if path == "" {
		return "root"
	}
	return fmt.Sprintf("%q", path)
}
