package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ResponseSchemas maps a status key to the schema of the response body.
//
// A key is an exact status code ("200"), a status class ("2xx") or
// "default". Lookup prefers the exact code, then the class, then default.
type ResponseSchemas map[string]Schema

// Responses is the compiled form of ResponseSchemas.
type Responses struct {
	exact    map[int]*Compiled
	class    map[int]*Compiled
	fallback *Compiled
}

// CompileResponses compiles every schema of rs.
func CompileResponses(rs ResponseSchemas) (*Responses, error) {
	r := &Responses{
		exact: make(map[int]*Compiled),
		class: make(map[int]*Compiled),
	}

	for key, s := range rs {
		c, err := Compile(s)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", key, err)
		}

		k := strings.ToLower(strings.TrimSpace(key))
		switch {
		case k == "default":
			r.fallback = c
		case len(k) == 3 && strings.HasSuffix(k, "xx") && k[0] >= '1' && k[0] <= '5':
			r.class[int(k[0]-'0')] = c
		default:
			code, err := strconv.Atoi(k)
			if err != nil || code < 100 || code > 599 {
				return nil, fmt.Errorf("response key %q is not a status code, class or default", key)
			}
			r.exact[code] = c
		}
	}

	return r, nil
}

// Select returns the schema that applies to status, if any.
func (r *Responses) Select(status int) (*Compiled, bool) {
	if r == nil {
		return nil, false
	}
	if c, ok := r.exact[status]; ok {
		return c, true
	}
	if c, ok := r.class[status/100]; ok {
		return c, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Filter shapes a handler result for status. Without a matching schema the
// value passes through untouched. Otherwise it is normalised into a JSON
// value tree, projected, and conformed to the declared types; values that
// cannot be represented fail with *SerializationError.
func (r *Responses) Filter(status int, value any) (any, error) {
	c, ok := r.Select(status)
	if !ok {
		return value, nil
	}

	tree, err := Normalize(value)
	if err != nil {
		return nil, &SerializationError{Status: status, Err: err}
	}

	out, err := c.Conform(c.Project(tree))
	if err != nil {
		return nil, &SerializationError{Status: status, Err: err}
	}
	return out, nil
}

// Codes lists the declared keys with their compiled schemas, for documentation.
func (r *Responses) Codes() map[string]*Compiled {
	if r == nil {
		return nil
	}
	out := make(map[string]*Compiled, len(r.exact)+len(r.class)+1)
	for code, c := range r.exact {
		out[strconv.Itoa(code)] = c
	}
	for class, c := range r.class {
		out[strconv.Itoa(class)+"XX"] = c
	}
	if r.fallback != nil {
		out["default"] = r.fallback
	}
	return out
}
