// Package postgres provides the PostgreSQL implementation of the data
// storage interfaces defined in the internal/store package, plus the
// embedded goose migrations that create and seed the users table.
package postgres
