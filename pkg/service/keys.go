package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/sigverify"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// AddKey registers an additional signing key on an account. The request is
// signed by one of the account's existing active keys.
func (s *AccountService) AddKey(ctx context.Context, req AddKeyRequest) (key *model.PublicKey, err error) {
	username := normalizeUsername(req.Username)
	defer func() { s.logOperation(model.ActionAddKey, username, req.ClientIP, req.SigningPublicKey, req.Nonce, err) }()

	// Stage 1: structural validation.
	if err = validateUsername(username); err != nil {
		return nil, err
	}
	newAlg, algErr := sigverify.ParseAlgorithm(req.NewAlgorithm)
	if algErr != nil {
		return nil, apperrors.InvalidFormat(algErr.Error())
	}
	if keyErr := sigverify.ValidatePublicKey(newAlg, req.NewPublicKey); keyErr != nil {
		return nil, apperrors.InvalidFormat(keyErr.Error())
	}
	if len(req.SigningPublicKey) == 0 {
		return nil, apperrors.InvalidFormat("signing public key is required")
	}
	if err = validateSignature(req.Signature); err != nil {
		return nil, err
	}
	nonce, err := parseNonce(req.Nonce)
	if err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		// Stage 2: account and signer existence.
		account, err := tx.AccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		if account == nil {
			return apperrors.ErrAccountNotFound
		}
		signer, err := s.lookupSigner(ctx, tx, req.SigningPublicKey, account.ID)
		if err != nil {
			return err
		}

		// Stage 3: replay. Runs before any uniqueness check so a replayed
		// request reads as a replay, not as a key conflict with itself.
		if err := s.guard.Check(ctx, tx, req.Timestamp, nonce); err != nil {
			return err
		}

		// Stage 4: signature, verified under the signer's recorded algorithm.
		payload := BuildAddKeyPayload(username, req.NewPublicKey, req.SigningPublicKey, req.Timestamp, req.Nonce)
		if !s.verifyWithKey(signer, payload, req.Signature) {
			return apperrors.ErrInvalidSignature
		}

		// Stage 5: new-key/principal uniqueness and the cardinality bound.
		existing, err := tx.KeyByPublicKey(ctx, req.NewPublicKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.ErrKeyAlreadyRegistered
		}
		principalText, err := s.derive(newAlg, req.NewPublicKey)
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

		// Stage 6: commit + audit.
		now := s.now()
		key = &model.PublicKey{
			ID:        s.newID(),
			AccountID: account.ID,
			Algorithm: newAlg.String(),
			PublicKey: req.NewPublicKey,
			Principal: principalText,
			IsActive:  true,
			AddedAt:   now,
		}
		if err := tx.CreateKey(ctx, key); err != nil {
			return err
		}

		return tx.Append(ctx, &model.AuditEntry{
			AccountID:        &account.ID,
			Action:           model.ActionAddKey,
			CanonicalPayload: payload,
			Signature:        req.Signature,
			PublicKey:        req.SigningPublicKey,
			RequestTimestamp: req.Timestamp,
			Nonce:            req.Nonce,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return key, nil
}

// RemoveKey disables a key. The request is signed by an active key on the
// same account; the disabled row keeps the signer's id and is never
// physically deleted, so the principal can never be reissued.
func (s *AccountService) RemoveKey(ctx context.Context, req RemoveKeyRequest) (key *model.PublicKey, err error) {
	username := normalizeUsername(req.Username)
	defer func() { s.logOperation(model.ActionRemoveKey, username, req.ClientIP, req.SigningPublicKey, req.Nonce, err) }()

	// Stage 1: structural validation.
	if err = validateUsername(username); err != nil {
		return nil, err
	}
	keyID, idErr := uuid.Parse(req.KeyID)
	if idErr != nil {
		return nil, apperrors.InvalidFormat("keyId must be a UUID")
	}
	if len(req.SigningPublicKey) == 0 {
		return nil, apperrors.InvalidFormat("signing public key is required")
	}
	if err = validateSignature(req.Signature); err != nil {
		return nil, err
	}
	nonce, err := parseNonce(req.Nonce)
	if err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		// Stage 2: account, target and signer existence.
		account, err := tx.AccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		if account == nil {
			return apperrors.ErrAccountNotFound
		}
		target, err := tx.KeyByID(ctx, keyID)
		if err != nil {
			return err
		}
		// A key on another account is reported not-found rather than
		// leaking its existence.
		if target == nil || target.AccountID != account.ID {
			return apperrors.ErrKeyNotFound
		}
		signer, err := s.lookupSigner(ctx, tx, req.SigningPublicKey, account.ID)
		if err != nil {
			return err
		}

		// Stage 3: replay.
		if err := s.guard.Check(ctx, tx, req.Timestamp, nonce); err != nil {
			return err
		}

		// Stage 4: signature.
		payload := BuildRemoveKeyPayload(username, req.KeyID, req.SigningPublicKey, req.Timestamp, req.Nonce)
		if !s.verifyWithKey(signer, payload, req.Signature) {
			return apperrors.ErrInvalidSignature
		}

		// Stage 5: last-active-key protection.
		activeCount, err := tx.CountActiveKeys(ctx, account.ID)
		if err != nil {
			return err
		}
		if err := s.lifecycle.CheckDisable(target, activeCount); err != nil {
			return err
		}

		// Stage 6: terminal transition + audit.
		now := s.now()
		target.Disable(now, &signer.ID)
		if err := tx.DisableKey(ctx, target); err != nil {
			return err
		}
		key = target

		return tx.Append(ctx, &model.AuditEntry{
			AccountID:        &account.ID,
			Action:           model.ActionRemoveKey,
			CanonicalPayload: payload,
			Signature:        req.Signature,
			PublicKey:        req.SigningPublicKey,
			RequestTimestamp: req.Timestamp,
			Nonce:            req.Nonce,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return key, nil
}

// lookupSigner resolves the claimed signing key and authorizes it for the
// account. An unknown signing key reads the same as an inactive one, so
// probing cannot distinguish "never existed" from "disabled".
func (s *AccountService) lookupSigner(ctx context.Context, tx store.Store, signingPublicKey []byte, accountID uuid.UUID) (*model.PublicKey, error) {
	signer, err := tx.KeyByPublicKey(ctx, signingPublicKey)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.AuthorizeSigner(signer, accountID); err != nil {
		return nil, err
	}
	return signer, nil
}

// verifyWithKey verifies payload/signature under the algorithm recorded on
// the signer's row, never one declared by the request.
func (s *AccountService) verifyWithKey(signer *model.PublicKey, payload, signature []byte) bool {
	alg, err := sigverify.ParseAlgorithm(signer.Algorithm)
	if err != nil {
		return false
	}
	return sigverify.Verify(alg, payload, signature, signer.PublicKey)
}
