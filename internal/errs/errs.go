// Package errs defines the error shapes returned to API clients.
//
// Every failure that leaves the service is an HTTPError serialized as JSON,
// so clients always see the same envelope: a machine code, a message, the
// status, and for validation failures the offending field.
package errs
