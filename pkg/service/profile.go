package service

import (
	"context"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// UpdateProfile applies a signed partial update to an account's profile
// fields. Unset fields stay untouched and are absent from the signed
// payload; a request that changes nothing is rejected outright.
func (s *AccountService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (account *model.Account, err error) {
	username := normalizeUsername(req.Username)
	defer func() {
		s.logOperation(model.ActionUpdateProfile, username, req.ClientIP, req.SigningPublicKey, req.Nonce, err)
	}()

	// Stage 1: structural validation.
	if err = validateUsername(username); err != nil {
		return nil, err
	}
	if req.DisplayName == nil && req.ContactEmail == nil && req.ContactURL == nil {
		return nil, apperrors.InvalidFormat("no profile fields to update")
	}
	if req.DisplayName != nil {
		if err = validateDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.ContactEmail != nil {
		if err = validateContactEmail(*req.ContactEmail); err != nil {
			return nil, err
		}
	}
	if req.ContactURL != nil {
		if err = validateContactURL(*req.ContactURL); err != nil {
			return nil, err
		}
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
		acct, err := tx.AccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		if acct == nil {
			return apperrors.ErrAccountNotFound
		}
		signer, err := s.lookupSigner(ctx, tx, req.SigningPublicKey, acct.ID)
		if err != nil {
			return err
		}

		// Stage 3: replay.
		if err := s.guard.Check(ctx, tx, req.Timestamp, nonce); err != nil {
			return err
		}

		// Stage 4: signature over the changed fields only.
		payload := BuildUpdateProfilePayload(username, req.DisplayName, req.ContactEmail, req.ContactURL,
			req.SigningPublicKey, req.Timestamp, req.Nonce)
		if !s.verifyWithKey(signer, payload, req.Signature) {
			return apperrors.ErrInvalidSignature
		}

		// Stage 6: commit + audit. Profile updates have no stage-5
		// cardinality invariant.
		now := s.now()
		if req.DisplayName != nil {
			acct.DisplayName = *req.DisplayName
		}
		if req.ContactEmail != nil {
			acct.ContactEmail = *req.ContactEmail
		}
		if req.ContactURL != nil {
			acct.ContactURL = *req.ContactURL
		}
		acct.UpdatedAt = now
		if err := tx.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		account = acct

		return tx.Append(ctx, &model.AuditEntry{
			AccountID:        &acct.ID,
			Action:           model.ActionUpdateProfile,
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
	return account, nil
}
