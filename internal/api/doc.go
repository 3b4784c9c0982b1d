// Package api handles incoming HTTP requests, request validation, and
// response formatting. It translates HTTP concerns into store operations
// and shapes every reply as the {success, payload} / {success, reason}
// JSON envelope.
package api
