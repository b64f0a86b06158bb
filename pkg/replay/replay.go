// Package replay decides whether a (timestamp, nonce) pair is fresh.
//
// Two independent checks gate every signed request: the timestamp must fall
// within a bounded drift window around server time, and the nonce must not
// appear in the audit log within the lookback window. The lookback is
// strictly larger than the drift window, so a request that has aged out of
// the timestamp check can never slip back in after its nonce record expires
// from the query.
package replay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
)

const (
	// TimestampWindow bounds tolerated clock drift between client and server.
	TimestampWindow = 300 * time.Second

	// NonceLookback is how far back the audit log is consulted for a nonce.
	// Must stay strictly larger than TimestampWindow.
	NonceLookback = 600 * time.Second
)

// NonceLog is the narrow view of the audit store the guard needs. The
// check-then-append pair is made atomic by running the guard inside the same
// transaction that appends the audit entry.
type NonceLog interface {
	NonceSeen(ctx context.Context, nonce string, since time.Time) (bool, error)
}

// Guard validates request freshness against a NonceLog.
type Guard struct {
	window   time.Duration
	lookback time.Duration
	now      func() time.Time
}

// NewGuard returns a Guard with the protocol's fixed windows.
func NewGuard() *Guard {
	return &Guard{window: TimestampWindow, lookback: NonceLookback, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Check rejects stale timestamps and reused nonces. The caller must invoke
// it inside the transaction that will append the audit entry carrying the
// nonce, so two concurrent requests with the same nonce cannot both pass.
func (g *Guard) Check(ctx context.Context, log NonceLog, timestamp int64, nonce uuid.UUID) error {
	now := g.now()

	drift := now.Unix() - timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(g.window/time.Second) {
		return apperrors.ErrTimestampOutOfRange
	}

	seen, err := log.NonceSeen(ctx, nonce.String(), now.Add(-g.lookback))
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if seen {
		return apperrors.ErrReplayDetected
	}
	return nil
}
