package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scriptmarket/identity-in-go/pkg/replay"
)

// Pruner deletes signature_audit rows past the retention window. It is a
// maintenance task run from the CLI, not a background goroutine.
type Pruner struct {
	db *sql.DB
}

// NewPruner opens a database/sql connection for pruning.
func NewPruner(databaseURL string) (*Pruner, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	return &Pruner{db: db}, nil
}

// NewPrunerWithDB wraps an existing connection. Used with sqlmock in tests.
func NewPrunerWithDB(db *sql.DB) *Pruner {
	return &Pruner{db: db}
}

func (p *Pruner) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Prune deletes entries created before cutoff and returns how many went.
// The cutoff may never reach into the replay lookback window: pruning a
// nonce record that the guard still consults would reopen replays.
func (p *Pruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if minCutoff := time.Now().Add(-replay.NonceLookback); cutoff.After(minCutoff) {
		return 0, fmt.Errorf("cutoff %s is inside the replay lookback window (ends %s)",
			cutoff.Format(time.RFC3339), minCutoff.Format(time.RFC3339))
	}

	res, err := p.db.ExecContext(ctx,
		`DELETE FROM signature_audit WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
