// Package backend assembles the persistence stack from configuration: the
// key/value backend, optional encryption at rest, optional AMQP publishing,
// the store, and the service on top.
package backend

import (
	"context"

	"moneywise/internal/config"
	"moneywise/internal/services"
)

// CleanupFunc releases the resources a backend holds open.
type CleanupFunc func() error

// BackendResult contains the assembled service and its cleanup function.
type BackendResult struct {
	Service *services.TransactionService
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg *config.Config) (*BackendResult, error)
}

// BackendType represents the kind of persistence behind the store.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
