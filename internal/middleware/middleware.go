// Package middleware holds the echo middleware shared by every route:
// request ids, the request-scoped logger, New Relic tracing, CORS, body
// limits, case-insensitive routing, panic recovery and the global error
// handler that turns every failure into an errs.HTTPError response.
package middleware
