package store

import "context"

// Store aggregates the persistence surface of the core. Lookup methods
// return (nil, nil) when no row matches; the caller decides the error code.
// Transient failures come back coded StoreUnavailable.
type Store interface {
	AccountsStore
	KeysStore
	AuditStore

	// Atomic runs fn inside a single transaction at serializable isolation
	// (or with equivalent optimistic retry). Every read fn performs sees a
	// state that still holds at commit; on conflict the transaction is
	// retried or fails as StoreUnavailable. If ctx is cancelled mid-flight
	// the whole transaction rolls back — no partial state survives.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	// Ping verifies store connectivity, for liveness reporting.
	Ping(ctx context.Context) error
}
