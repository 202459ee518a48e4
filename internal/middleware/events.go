package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"
)

// EventRecorder sends pipeline events to New Relic. The zero value and a
// recorder without an application drop every event.
type EventRecorder struct {
	nrApp *newrelic.Application
}

func NewEventRecorder(nrApp *newrelic.Application) *EventRecorder {
	return &EventRecorder{nrApp: nrApp}
}

// RecordHookAborted records a request terminated early by a hook.
func (r *EventRecorder) RecordHookAborted(route, hook string, status int) {
	r.record("HookAborted", map[string]any{
		"route":  route,
		"hook":   hook,
		"status": status,
	})
}

// RecordValidationFailed records a body rejected by its schema.
func (r *EventRecorder) RecordValidationFailed(route, field, reason string) {
	r.record("ValidationFailed", map[string]any{
		"route":  route,
		"field":  field,
		"reason": reason,
	})
}

func (r *EventRecorder) record(eventType string, params map[string]any) {
	if r == nil || r.nrApp == nil {
		return
	}
	r.nrApp.RecordCustomEvent(eventType, params)
}
