package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

// KeysStore abstracts public-key row access. Keys are append-and-disable
// only; there is deliberately no delete operation.
type KeysStore interface {
	// CreateKey inserts a new key record in Active state.
	CreateKey(ctx context.Context, key *model.PublicKey) error

	// KeyByID fetches a key record by id.
	KeyByID(ctx context.Context, id uuid.UUID) (*model.PublicKey, error)

	// KeyByPublicKey fetches the record holding these exact key bytes,
	// active or disabled, across all accounts.
	KeyByPublicKey(ctx context.Context, publicKey []byte) (*model.PublicKey, error)

	// KeysForAccount lists every key record on the account, disabled
	// included, ordered by added_at.
	KeysForAccount(ctx context.Context, accountID uuid.UUID) ([]model.PublicKey, error)

	// CountActiveKeys counts the account's active keys.
	CountActiveKeys(ctx context.Context, accountID uuid.UUID) (int, error)

	// DisableKey persists the Active→Disabled transition fields of key.
	DisableKey(ctx context.Context, key *model.PublicKey) error

	// PrincipalInUse reports whether the principal is bound to any key
	// record, disabled ones included.
	PrincipalInUse(ctx context.Context, principal string) (bool, error)
}
