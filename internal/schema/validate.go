package schema

import (
	"bytes"
	"fmt"
)

type mode int

const (
	// modeInput enforces required and additionalProperties and rejects null.
	modeInput mode = iota
	// modeOutput only conforms the values that are present.
	modeOutput
)

// Validate checks v (a JSON value tree, see DecodeJSON) against the schema
// and returns a new value holding only the declared properties, coerced to
// their declared types. The error, when not nil, is a *ValidationError
// describing the first failure.
func (c *Compiled) Validate(v any) (any, error) {
	out, verr := c.root.walk("", v, modeInput)
	if verr != nil {
		return nil, verr
	}
	return out, nil
}

// ValidateJSON decodes a raw body and validates it. An empty body stands for
// an empty object when the root is an object. Bodies that are not a single
// JSON value fail with ErrMalformedBody.
func (c *Compiled) ValidateJSON(data []byte) (any, error) {
	var v any
	if len(bytes.TrimSpace(data)) == 0 {
		if c.root.typ == TypeObject {
			v = NewJSONObject()
		}
	} else {
		decoded, err := DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		v = decoded
	}
	return c.Validate(v)
}

// Conform coerces the values present in v to the declared types without
// enforcing required or additionalProperties. It is applied to projected
// response values; null is kept as is.
func (c *Compiled) Conform(v any) (any, error) {
	out, verr := c.root.walk("", v, modeOutput)
	if verr != nil {
		return nil, verr
	}
	return out, nil
}

func (n *node) walk(path string, v any, m mode) (any, *ValidationError) {
	if v == nil && m == modeOutput {
		return nil, nil
	}

	switch n.typ {
	case TypeObject:
		return n.walkObject(path, v, m)
	case TypeArray:
		return n.walkArray(path, v, m)
	}

	out, ok := coerce(n.typ, v)
	if !ok {
		return nil, TypeMismatch(path, n.typ, typeName(v))
	}
	return out, nil
}

func (n *node) walkObject(path string, v any, m mode) (any, *ValidationError) {
	obj, ok := v.(*JSONObject)
	if !ok {
		return nil, TypeMismatch(path, TypeObject, typeName(v))
	}

	out := NewJSONObject()
	if m == modeOutput {
		// Keep the source order for output.
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			p, declared := n.index[pair.Key]
			if !declared {
				continue
			}
			val, verr := p.node.walk(joinPath(path, p.name), pair.Value, m)
			if verr != nil {
				return nil, verr
			}
			out.Set(p.name, val)
		}
		return out, nil
	}

	for _, p := range n.props {
		raw, present := obj.Get(p.name)
		if !present {
			if p.required {
				return nil, MissingField(joinPath(path, p.name))
			}
			continue
		}
		val, verr := p.node.walk(joinPath(path, p.name), raw, m)
		if verr != nil {
			return nil, verr
		}
		out.Set(p.name, val)
	}

	if n.additional == AdditionalReject {
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			if _, declared := n.index[pair.Key]; !declared {
				return nil, UnexpectedField(joinPath(path, pair.Key))
			}
		}
	}

	return out, nil
}

func (n *node) walkArray(path string, v any, m mode) (any, *ValidationError) {
	arr, ok := v.([]any)
	if !ok {
		return nil, TypeMismatch(path, TypeArray, typeName(v))
	}

	out := make([]any, len(arr))
	for i, elem := range arr {
		if n.items == nil {
			out[i] = elem
			continue
		}
		val, verr := n.items.walk(indexPath(path, i), elem, m)
		if verr != nil {
			return nil, verr
		}
		out[i] = val
	}
	return out, nil
}
