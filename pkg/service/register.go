package service

import (
	"context"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/sigverify"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// RegisterAccount creates an account together with its first signing key.
// The request is self-signed: the signature is verified against the key
// being registered.
func (s *AccountService) RegisterAccount(ctx context.Context, req RegisterAccountRequest) (account *model.Account, key *model.PublicKey, err error) {
	username := normalizeUsername(req.Username)
	defer func() { s.logOperation(model.ActionRegisterAccount, username, req.ClientIP, req.PublicKey, req.Nonce, err) }()

	// Stage 1: structural validation.
	if err = validateUsername(username); err != nil {
		return nil, nil, err
	}
	if s.cfg.IsReservedUsername(username) {
		return nil, nil, apperrors.ErrReservedUsername
	}
	if err = validateDisplayName(req.DisplayName); err != nil {
		return nil, nil, err
	}
	if err = validateContactEmail(req.ContactEmail); err != nil {
		return nil, nil, err
	}
	if err = validateContactURL(req.ContactURL); err != nil {
		return nil, nil, err
	}
	alg, algErr := sigverify.ParseAlgorithm(req.Algorithm)
	if algErr != nil {
		return nil, nil, apperrors.InvalidFormat(algErr.Error())
	}
	if keyErr := sigverify.ValidatePublicKey(alg, req.PublicKey); keyErr != nil {
		return nil, nil, apperrors.InvalidFormat(keyErr.Error())
	}
	if err = validateSignature(req.Signature); err != nil {
		return nil, nil, err
	}
	nonce, err := parseNonce(req.Nonce)
	if err != nil {
		return nil, nil, err
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		// Stage 3: replay. Registration has no existence stage, and replay
		// runs before the uniqueness checks so a replayed request reads as
		// a replay, not as a name/key conflict with itself.
		if err := s.guard.Check(ctx, tx, req.Timestamp, nonce); err != nil {
			return err
		}

		// Stage 4: signature over the canonical payload.
		payload := BuildRegisterPayload(username, req.PublicKey, req.Timestamp, req.Nonce)
		if !sigverify.Verify(alg, payload, req.Signature, req.PublicKey) {
			return apperrors.ErrInvalidSignature
		}

		// Stage 5: uniqueness of username, key and principal.
		taken, err := tx.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrUsernameTaken
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

		// Stage 6: commit. The first key trivially satisfies the 1..10
		// active-key bound, so there is no stage-5 cardinality check.
		now := s.now()
		account = &model.Account{
			ID:           s.newID(),
			Username:     username,
			DisplayName:  req.DisplayName,
			ContactEmail: req.ContactEmail,
			ContactURL:   req.ContactURL,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			return err
		}

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
			AccountID:        &account.ID,
			Action:           model.ActionRegisterAccount,
			CanonicalPayload: payload,
			Signature:        req.Signature,
			PublicKey:        req.PublicKey,
			RequestTimestamp: req.Timestamp,
			Nonce:            req.Nonce,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return nil, nil, asAppError(err)
	}
	return account, key, nil
}
