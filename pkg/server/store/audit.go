package store

import (
	"context"
	"time"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

// AuditStore is the append-only signature audit log. It is the source of
// truth for replay detection and for compliance review; no update or delete
// is exposed here. Retention pruning lives in pkg/audit as a maintenance
// task with its own guard rails.
type AuditStore interface {
	// Append inserts an audit entry.
	Append(ctx context.Context, entry *model.AuditEntry) error

	// NonceSeen reports whether nonce appears in an entry created at or
	// after since.
	NonceSeen(ctx context.Context, nonce string, since time.Time) (bool, error)
}
