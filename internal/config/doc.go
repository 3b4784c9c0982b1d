// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides
// type-safe access to the server and database settings needed by the rest
// of the application while keeping configuration details separate from
// business logic.
package config
