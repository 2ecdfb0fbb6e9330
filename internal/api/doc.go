// Package api implements the HTTP transport layer: request decoding and
// validation, resource handlers for users and products, and the mapping
// from service errors to HTTP status codes and response envelopes.
package api
