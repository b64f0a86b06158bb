// Package keylifecycle owns the invariants over an account's key set.
//
// Per-key state machine: Active → Disabled, terminal. Invariant after any
// committed operation: 1 <= active keys per account <= MaxActiveKeys, with
// the lower bound relaxed only by admin overrides pending recovery.
package keylifecycle

import (
	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/model"
)

// MaxActiveKeys bounds the active key set of a single account.
const MaxActiveKeys = 10

// Manager evaluates key-set transitions. It is pure: all state is passed in,
// and the caller runs it inside the account's transaction so the counts it
// sees hold at commit time.
type Manager struct {
	maxActiveKeys int
}

func NewManager() Manager {
	return Manager{maxActiveKeys: MaxActiveKeys}
}

// AuthorizeSigner checks that the signing key may act for the account:
// it must be active and owned by that account.
func (Manager) AuthorizeSigner(signer *model.PublicKey, accountID uuid.UUID) error {
	if signer == nil || !signer.IsActive {
		return apperrors.ErrKeyNotActive
	}
	if signer.AccountID != accountID {
		return apperrors.ErrAccountMismatch
	}
	return nil
}

// CheckAdd enforces the upper cardinality bound before a key is added.
// Global public-key/principal uniqueness is the store's constraint and is
// checked by the caller against lookups in the same transaction.
func (m Manager) CheckAdd(activeCount int) error {
	if activeCount >= m.maxActiveKeys {
		return apperrors.ErrKeyLimitExceeded
	}
	return nil
}

// CheckDisable enforces the user-initiated disable rules: the target must
// still be active, and disabling it must leave at least one active key on
// the account.
func (m Manager) CheckDisable(target *model.PublicKey, activeCount int) error {
	if target == nil || !target.IsActive {
		return apperrors.ErrKeyNotActive
	}
	if activeCount-1 < 1 {
		return apperrors.ErrLastActiveKeyProtected
	}
	return nil
}

// CheckAdminDisable enforces the admin-override disable rules. Admin actions
// may legitimately zero out an account's keys pending recovery, so only the
// terminal-state rule applies.
func (m Manager) CheckAdminDisable(target *model.PublicKey) error {
	if target == nil || !target.IsActive {
		return apperrors.ErrKeyNotActive
	}
	return nil
}
