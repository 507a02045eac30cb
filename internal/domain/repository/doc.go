// Package repository defines the credential store contracts shared by the
// session service and the storage adapters.
//
// Implementations live in internal/store/pg (Postgres) and
// internal/store/memory (in-process). Context is always the first parameter
// and domain errors are declared in errors.go.
package repository
