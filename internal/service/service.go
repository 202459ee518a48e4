// Package service contains the business logic behind the routes.
//
// Services receive values the pipeline has already validated and coerced;
// they never see raw request bodies, and what they return is filtered by
// the route's response schema before it reaches the client.
package service
