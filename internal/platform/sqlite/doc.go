// Package sqlite provides the SQLite implementation of the data storage
// interfaces defined in the internal/store package. It backs local
// development and hermetic tests, while the postgres package serves
// deployments with a real database server.
package sqlite
