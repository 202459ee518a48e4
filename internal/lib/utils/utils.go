// Package utils contains small helpers shared by hooks and handlers.
//
// Helpers are passed to every request through lifecycle.RequestContext
// instead of living in package-level state, so tests can swap them.
package utils

import (
	"encoding/json"
	"strings"
)

// Helpers is the set of utilities available to hooks and handlers.
type Helpers struct{}

func NewHelpers() *Helpers {
	return &Helpers{}
}

// Repeat returns s repeated times times. Non-positive counts give "".
func (h *Helpers) Repeat(s string, times int) string {
	if times <= 0 {
		return ""
	}
	return strings.Repeat(s, times)
}

// CompactJSON renders v as a single-line JSON string for log fields. Values
// that cannot be encoded render as "null".
func (h *Helpers) CompactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
