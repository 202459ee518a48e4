// Package handler is the HTTP layer: it turns registered routes into echo
// handlers that run the request pipeline (hooks, body schema, service call,
// response schema), and serves the system endpoints.
package handler
