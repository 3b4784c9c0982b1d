// Package domain defines the core entities of the users service and their
// validation rules, independent of storage and transport concerns.
package domain
