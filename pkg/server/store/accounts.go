package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

// AccountsStore abstracts account row access.
type AccountsStore interface {
	// CreateAccount inserts a new account.
	CreateAccount(ctx context.Context, account *model.Account) error

	// AccountByUsername fetches an account by normalized username.
	AccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// AccountByID fetches an account by id.
	AccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)

	// UpdateAccount persists changed profile fields.
	UpdateAccount(ctx context.Context, account *model.Account) error

	// UsernameExists reports whether the username is taken.
	UsernameExists(ctx context.Context, username string) (bool, error)
}
