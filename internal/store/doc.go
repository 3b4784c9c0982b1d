// Package store defines the persistence interfaces for the users service.
// The interfaces abstract the storage backend so the HTTP layer stays
// independent of the concrete database driver in use.
package store
