package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/sigverify"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// Admin overrides. These are not signed requests: authorization happens at
// the transport layer (admin bearer token), so the replay and signature
// stages do not apply. Every override is audited with the admin flag, the
// authenticated admin subject and the stated reason.

// AdminDisableKey disables a key outside the signed flow, for key
// compromise or account-takeover response. It may disable the last active
// key of an account, leaving it locked pending AdminAddRecoveryKey.
func (s *AccountService) AdminDisableKey(ctx context.Context, req AdminDisableKeyRequest) (key *model.PublicKey, err error) {
	var username string
	defer func() {
		s.logAdmin(model.ActionAdminDisableKey, req.AdminSubject, username, req.KeyID, req.ClientIP, req.Reason, err)
	}()

	keyID, idErr := uuid.Parse(req.KeyID)
	if idErr != nil {
		return nil, apperrors.InvalidFormat("keyId must be a UUID")
	}
	if req.Reason == "" {
		return nil, apperrors.InvalidFormat("reason is required")
	}
	if req.AdminSubject == "" {
		return nil, apperrors.InvalidFormat("admin subject is required")
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		target, err := tx.KeyByID(ctx, keyID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperrors.ErrKeyNotFound
		}
		if err := s.lifecycle.CheckAdminDisable(target); err != nil {
			return err
		}
		// Resolve the owner so the audit line names the account, not just
		// the key id.
		if account, err := tx.AccountByID(ctx, target.AccountID); err == nil && account != nil {
			username = account.Username
		}

		now := s.now()
		target.Disable(now, nil)
		if err := tx.DisableKey(ctx, target); err != nil {
			return err
		}
		key = target

		return tx.Append(ctx, &model.AuditEntry{
			AccountID:     &target.AccountID,
			Action:        model.ActionAdminDisableKey,
			PublicKey:     target.PublicKey,
			IsAdminAction: true,
			AdminSubject:  req.AdminSubject,
			Reason:        req.Reason,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return key, nil
}

// AdminAddRecoveryKey attaches a new active key to an account without an
// existing signer, restoring access after all keys were disabled. The usual
// uniqueness and cardinality invariants still hold.
func (s *AccountService) AdminAddRecoveryKey(ctx context.Context, req AdminRecoveryKeyRequest) (key *model.PublicKey, err error) {
	username := normalizeUsername(req.Username)
	defer func() {
		s.logAdmin(model.ActionAdminAddRecoveryKey, req.AdminSubject, username, "", req.ClientIP, req.Reason, err)
	}()

	if err = validateUsername(username); err != nil {
		return nil, err
	}
	alg, algErr := sigverify.ParseAlgorithm(req.Algorithm)
	if algErr != nil {
		return nil, apperrors.InvalidFormat(algErr.Error())
	}
	if keyErr := sigverify.ValidatePublicKey(alg, req.PublicKey); keyErr != nil {
		return nil, apperrors.InvalidFormat(keyErr.Error())
	}
	if req.Reason == "" {
		return nil, apperrors.InvalidFormat("reason is required")
	}
	if req.AdminSubject == "" {
		return nil, apperrors.InvalidFormat("admin subject is required")
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		account, err := tx.AccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		if account == nil {
			return apperrors.ErrAccountNotFound
		}
		existing, err := tx.KeyByPublicKey(ctx, req.PublicKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.ErrKeyAlreadyRegistered
		}
		principalText, err := s.derive(alg, req.PublicKey)
		if err != nil {
			return apperrors.InvalidFormat(err.Error())
		}
		inUse, err := tx.PrincipalInUse(ctx, principalText)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.ErrKeyAlreadyRegistered
		}
		activeCount, err := tx.CountActiveKeys(ctx, account.ID)
		if err != nil {
			return err
		}
		if err := s.lifecycle.CheckAdd(activeCount); err != nil {
			return err
		}

		now := s.now()
		key = &model.PublicKey{
			ID:        s.newID(),
			AccountID: account.ID,
			Algorithm: alg.String(),
			PublicKey: req.PublicKey,
			Principal: principalText,
			IsActive:  true,
			AddedAt:   now,
		}
		if err := tx.CreateKey(ctx, key); err != nil {
			return err
		}

		return tx.Append(ctx, &model.AuditEntry{
			AccountID:     &account.ID,
			Action:        model.ActionAdminAddRecoveryKey,
			PublicKey:     req.PublicKey,
			IsAdminAction: true,
			AdminSubject:  req.AdminSubject,
			Reason:        req.Reason,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return key, nil
}

// Read-side queries used by the HTTP surface and the CLI.

// AccountByUsername fetches an account. Not-found maps to the domain error.
func (s *AccountService) AccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	normalized := normalizeUsername(username)
	if err := validateUsername(normalized); err != nil {
		return nil, err
	}
	account, err := s.store.AccountByUsername(ctx, normalized)
	if err != nil {
		return nil, asAppError(err)
	}
	if account == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	return account, nil
}

// KeysForAccount lists every key record on the account, disabled included.
func (s *AccountService) KeysForAccount(ctx context.Context, username string) ([]model.PublicKey, error) {
	account, err := s.AccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	keys, err := s.store.KeysForAccount(ctx, account.ID)
	if err != nil {
		return nil, asAppError(err)
	}
	return keys, nil
}

// Ping reports store connectivity for the status endpoint.
func (s *AccountService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return asAppError(err)
	}
	return nil
}
