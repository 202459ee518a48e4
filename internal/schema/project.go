package schema

// Project returns a copy of v that keeps only the properties the schema
// declares, recursively through nested objects and array items. Kept keys
// stay in v's insertion order. Declared properties missing from v are simply
// absent from the result; values whose shape does not match the schema are
// returned unchanged. Project never fails and never modifies v.
//
// v is expected to be a JSON value tree (see DecodeJSON and Normalize).
func (c *Compiled) Project(v any) any {
	return c.root.project(v)
}

func (n *node) project(v any) any {
	switch n.typ {
	case TypeObject:
		obj, ok := v.(*JSONObject)
		if !ok {
			return v
		}
		out := NewJSONObject()
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			p, declared := n.index[pair.Key]
			if !declared {
				continue
			}
			out.Set(pair.Key, p.node.project(pair.Value))
		}
		return out

	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(arr))
		for i, elem := range arr {
			if n.items == nil {
				out[i] = elem
				continue
			}
			out[i] = n.items.project(elem)
		}
		return out
	}

	return v
}
