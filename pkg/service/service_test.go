package service

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/audit"
	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/model"
)

var testTime = time.Unix(1700000000, 0).UTC()

type signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newSigner(t *testing.T) signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return signer{pub: pub, priv: priv}
}

func (s signer) sign(payload []byte) []byte {
	return ed25519.Sign(s.priv, payload)
}

func newTestService(t *testing.T) (*AccountService, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	cfg := &config.Config{ReservedUsernames: []string{"admin", "root", "support"}}
	logger := audit.NewLogger()
	logger.SetWriter(io.Discard)
	svc := NewAccountService(st, cfg).
		WithClock(func() time.Time { return testTime }).
		WithAuditLogger(logger)
	return svc, st
}

func registerRequest(username string, sg signer) RegisterAccountRequest {
	nonce := uuid.NewString()
	// Clients sign the normalized username, the same form the server
	// canonicalizes to.
	payload := BuildRegisterPayload(normalizeUsername(username), sg.pub, testTime.Unix(), nonce)
	return RegisterAccountRequest{
		Username:    username,
		DisplayName: "Display " + username,
		Algorithm:   "ed25519",
		PublicKey:   sg.pub,
		Signature:   sg.sign(payload),
		Timestamp:   testTime.Unix(),
		Nonce:       nonce,
	}
}

func addKeyRequest(username string, newKey, signingKey signer) AddKeyRequest {
	nonce := uuid.NewString()
	payload := BuildAddKeyPayload(username, newKey.pub, signingKey.pub, testTime.Unix(), nonce)
	return AddKeyRequest{
		Username:         username,
		NewAlgorithm:     "ed25519",
		NewPublicKey:     newKey.pub,
		SigningPublicKey: signingKey.pub,
		Signature:        signingKey.sign(payload),
		Timestamp:        testTime.Unix(),
		Nonce:            nonce,
	}
}

func removeKeyRequest(username, keyID string, signingKey signer) RemoveKeyRequest {
	nonce := uuid.NewString()
	payload := BuildRemoveKeyPayload(username, keyID, signingKey.pub, testTime.Unix(), nonce)
	return RemoveKeyRequest{
		Username:         username,
		KeyID:            keyID,
		SigningPublicKey: signingKey.pub,
		Signature:        signingKey.sign(payload),
		Timestamp:        testTime.Unix(),
		Nonce:            nonce,
	}
}

func mustRegister(t *testing.T, svc *AccountService, username string) (*model.Account, *model.PublicKey, signer) {
	t.Helper()
	sg := newSigner(t)
	account, key, err := svc.RegisterAccount(context.Background(), registerRequest(username, sg))
	require.NoError(t, err)
	return account, key, sg
}

func TestKeyRotationLifecycle(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	account, k1, sg1 := mustRegister(t, svc, "alice")
	assert.Equal(t, "alice", account.Username)
	assert.True(t, k1.IsActive)
	assert.NotEmpty(t, k1.Principal)

	sg2 := newSigner(t)
	k2, err := svc.AddKey(ctx, addKeyRequest("alice", sg2, sg1))
	require.NoError(t, err)
	assert.Equal(t, account.ID, k2.AccountID)

	removed, err := svc.RemoveKey(ctx, removeKeyRequest("alice", k1.ID.String(), sg2))
	require.NoError(t, err)
	assert.False(t, removed.IsActive)
	require.NotNil(t, removed.DisabledByKeyID)
	assert.Equal(t, k2.ID, *removed.DisabledByKeyID)

	// The last active key cannot be removed through the signed flow.
	_, err = svc.RemoveKey(ctx, removeKeyRequest("alice", k2.ID.String(), sg2))
	assert.Equal(t, apperrors.CodeLastActiveKeyProtected, apperrors.CodeOf(err))

	// Disabled keys stay on the record: register + add + remove = 3 audit
	// entries, 2 key rows.
	assert.Len(t, st.entries, 3)
	assert.Len(t, st.keys, 2)
}

func TestReplayedRequestRejected(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	account, _, sg1 := mustRegister(t, svc, "alice")

	req := addKeyRequest("alice", newSigner(t), sg1)
	_, err := svc.AddKey(ctx, req)
	require.NoError(t, err)

	// Byte-identical resubmission: same nonce, same signature. The replay
	// must leave state exactly as the first attempt committed it.
	_, err = svc.AddKey(ctx, req)
	assert.Equal(t, apperrors.CodeReplayDetected, apperrors.CodeOf(err))

	active, err := st.CountActiveKeys(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, active)
	assert.Len(t, st.entries, 2)
}

func TestTimestampWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, sg1 := mustRegister(t, svc, "alice")

	for _, tc := range []struct {
		name   string
		offset int64
		code   apperrors.Code
	}{
		{"301s in the past", -301, apperrors.CodeTimestampOutOfRange},
		{"301s in the future", 301, apperrors.CodeTimestampOutOfRange},
	} {
		t.Run(tc.name, func(t *testing.T) {
			nonce := uuid.NewString()
			ts := testTime.Unix() + tc.offset
			newKey := newSigner(t)
			payload := BuildAddKeyPayload("alice", newKey.pub, sg1.pub, ts, nonce)
			_, err := svc.AddKey(ctx, AddKeyRequest{
				Username:         "alice",
				NewAlgorithm:     "ed25519",
				NewPublicKey:     newKey.pub,
				SigningPublicKey: sg1.pub,
				Signature:        sg1.sign(payload),
				Timestamp:        ts,
				Nonce:            nonce,
			})
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
		})
	}
}

func TestActiveKeyLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, sg1 := mustRegister(t, svc, "alice")

	// 9 more keys brings the account to the limit of 10.
	for i := 0; i < 9; i++ {
		_, err := svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), sg1))
		require.NoError(t, err)
	}

	_, err := svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), sg1))
	assert.Equal(t, apperrors.CodeKeyLimitExceeded, apperrors.CodeOf(err))
}

func TestDuplicateKeyRejectedAcrossAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, sgAlice := mustRegister(t, svc, "alice")
	_, _, sgBob := mustRegister(t, svc, "bob")

	// Alice's key cannot be registered again, on any account.
	_, _, err := svc.RegisterAccount(ctx, registerRequest("carol", sgAlice))
	assert.Equal(t, apperrors.CodeKeyAlreadyRegistered, apperrors.CodeOf(err))

	_, err = svc.AddKey(ctx, addKeyRequest("bob", sgAlice, sgBob))
	assert.Equal(t, apperrors.CodeKeyAlreadyRegistered, apperrors.CodeOf(err))
}

func TestInvalidSignatureCommitsNothing(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	account, _, sg1 := mustRegister(t, svc, "alice")
	entriesBefore := len(st.entries)

	req := addKeyRequest("alice", newSigner(t), sg1)
	req.Signature[0] ^= 0xff
	_, err := svc.AddKey(ctx, req)
	assert.Equal(t, apperrors.CodeInvalidSignature, apperrors.CodeOf(err))

	active, err := st.CountActiveKeys(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
	assert.Len(t, st.entries, entriesBefore)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "alice")

	for _, tc := range []struct {
		name     string
		username string
		code     apperrors.Code
	}{
		{"reserved", "admin", apperrors.CodeReservedUsername},
		{"taken", "alice", apperrors.CodeUsernameTaken},
		{"taken after normalization", "ALICE", apperrors.CodeUsernameTaken},
		{"too short", "ab", apperrors.CodeInvalidFormat},
		{"bad characters", "no spaces", apperrors.CodeInvalidFormat},
		{"edge punctuation", "-alice", apperrors.CodeInvalidFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.RegisterAccount(ctx, registerRequest(tc.username, newSigner(t)))
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
		})
	}
}

func TestValidationOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, k1, sg1 := mustRegister(t, svc, "alice")

	t.Run("existence before replay", func(t *testing.T) {
		// Unknown account and a stale timestamp: existence wins.
		req := addKeyRequest("ghost", newSigner(t), sg1)
		req.Timestamp = testTime.Unix() - 1000
		_, err := svc.AddKey(ctx, req)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})

	t.Run("replay before signature", func(t *testing.T) {
		// Stale timestamp and a garbage signature: freshness wins.
		req := addKeyRequest("alice", newSigner(t), sg1)
		req.Timestamp = testTime.Unix() - 1000
		req.Signature = []byte("garbage")
		_, err := svc.AddKey(ctx, req)
		assert.Equal(t, apperrors.CodeTimestampOutOfRange, apperrors.CodeOf(err))
	})

	t.Run("signature before business invariant", func(t *testing.T) {
		// Bad signature on a last-key removal: the signature check wins.
		req := removeKeyRequest("alice", k1.ID.String(), sg1)
		req.Signature[0] ^= 0xff
		_, err := svc.RemoveKey(ctx, req)
		assert.Equal(t, apperrors.CodeInvalidSignature, apperrors.CodeOf(err))
	})

	t.Run("replay before uniqueness", func(t *testing.T) {
		// A resubmitted add_key collides with the key it registered
		// itself; it must read as a replay, not as a key conflict.
		req := addKeyRequest("alice", newSigner(t), sg1)
		_, err := svc.AddKey(ctx, req)
		require.NoError(t, err)

		_, err = svc.AddKey(ctx, req)
		assert.Equal(t, apperrors.CodeReplayDetected, apperrors.CodeOf(err))
	})
}

func TestReplayedRegisterRejected(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sg := newSigner(t)
	req := registerRequest("alice", sg)
	_, _, err := svc.RegisterAccount(ctx, req)
	require.NoError(t, err)

	// The resubmission collides with its own account and key; the nonce
	// check must win over both uniqueness checks.
	_, _, err = svc.RegisterAccount(ctx, req)
	assert.Equal(t, apperrors.CodeReplayDetected, apperrors.CodeOf(err))
	assert.Len(t, st.accounts, 1)
	assert.Len(t, st.entries, 1)
}

func TestSignerAuthorization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, sgAlice := mustRegister(t, svc, "alice")
	_, bobKey, sgBob := mustRegister(t, svc, "bob")

	t.Run("unknown signing key", func(t *testing.T) {
		stranger := newSigner(t)
		_, err := svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), stranger))
		assert.Equal(t, apperrors.CodeKeyNotActive, apperrors.CodeOf(err))
	})

	t.Run("signing key from another account", func(t *testing.T) {
		_, err := svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), sgBob))
		assert.Equal(t, apperrors.CodeAccountMismatch, apperrors.CodeOf(err))
	})

	t.Run("target key from another account reads as not found", func(t *testing.T) {
		_, err := svc.RemoveKey(ctx, removeKeyRequest("alice", bobKey.ID.String(), sgAlice))
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, sg1 := mustRegister(t, svc, "alice")

	newName := "Alice Lidell"
	newEmail := "alice@example.com"
	nonce := uuid.NewString()
	payload := BuildUpdateProfilePayload("alice", &newName, &newEmail, nil, sg1.pub, testTime.Unix(), nonce)
	account, err := svc.UpdateProfile(ctx, UpdateProfileRequest{
		Username:         "alice",
		DisplayName:      &newName,
		ContactEmail:     &newEmail,
		SigningPublicKey: sg1.pub,
		Signature:        sg1.sign(payload),
		Timestamp:        testTime.Unix(),
		Nonce:            nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, account.DisplayName)
	assert.Equal(t, newEmail, account.ContactEmail)

	// The update persisted; the untouched contact URL stayed empty.
	reread, err := svc.AccountByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, newName, reread.DisplayName)
	assert.Empty(t, reread.ContactURL)
}

func TestUpdateProfileNoFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, sg1 := mustRegister(t, svc, "alice")

	nonce := uuid.NewString()
	payload := BuildUpdateProfilePayload("alice", nil, nil, nil, sg1.pub, testTime.Unix(), nonce)
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileRequest{
		Username:         "alice",
		SigningPublicKey: sg1.pub,
		Signature:        sg1.sign(payload),
		Timestamp:        testTime.Unix(),
		Nonce:            nonce,
	})
	assert.Equal(t, apperrors.CodeInvalidFormat, apperrors.CodeOf(err))
}

func TestAdminOverridesAndRecovery(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	account, k1, _ := mustRegister(t, svc, "alice")

	// Admin can disable the last active key, unlike the signed flow.
	disabled, err := svc.AdminDisableKey(ctx, AdminDisableKeyRequest{
		KeyID:        k1.ID.String(),
		Reason:       "reported compromise",
		AdminSubject: "ops-oncall",
	})
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)
	assert.Nil(t, disabled.DisabledByKeyID)

	active, err := st.CountActiveKeys(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, active)

	// Disabling twice hits the terminal-state rule.
	_, err = svc.AdminDisableKey(ctx, AdminDisableKeyRequest{
		KeyID:        k1.ID.String(),
		Reason:       "again",
		AdminSubject: "ops-oncall",
	})
	assert.Equal(t, apperrors.CodeKeyNotActive, apperrors.CodeOf(err))

	// Recovery reattaches a fresh key with no signer.
	recovery := newSigner(t)
	recovered, err := svc.AdminAddRecoveryKey(ctx, AdminRecoveryKeyRequest{
		Username:     "alice",
		Algorithm:    "ed25519",
		PublicKey:    recovery.pub,
		Reason:       "identity verified out of band",
		AdminSubject: "ops-oncall",
	})
	require.NoError(t, err)
	assert.True(t, recovered.IsActive)
	assert.Equal(t, account.ID, recovered.AccountID)

	// The recovered key signs normally again.
	_, err = svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), recovery))
	require.NoError(t, err)

	// Admin entries are flagged and carry subject and reason.
	var adminEntries []model.AuditEntry
	for _, e := range st.entries {
		if e.IsAdminAction {
			adminEntries = append(adminEntries, e)
		}
	}
	require.Len(t, adminEntries, 2)
	assert.Equal(t, model.ActionAdminDisableKey, adminEntries[0].Action)
	assert.Equal(t, "ops-oncall", adminEntries[0].AdminSubject)
	assert.Equal(t, "reported compromise", adminEntries[0].Reason)
	assert.Empty(t, adminEntries[0].Nonce)
	assert.Equal(t, model.ActionAdminAddRecoveryKey, adminEntries[1].Action)
}

func TestAdminDisableAuditNamesAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, k1, _ := mustRegister(t, svc, "alice")

	var lines bytes.Buffer
	logger := audit.NewLogger()
	logger.SetWriter(&lines)
	svc.WithAuditLogger(logger)

	_, err := svc.AdminDisableKey(ctx, AdminDisableKeyRequest{
		KeyID:        k1.ID.String(),
		Reason:       "reported compromise",
		AdminSubject: "ops-oncall",
	})
	require.NoError(t, err)

	// The override is addressed by key id, but the audit line still
	// names the owning account.
	assert.Contains(t, lines.String(), `account="alice"`)
	assert.Contains(t, lines.String(), `key="`+k1.ID.String()+`"`)
}

func TestAdminRequestValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, k1, _ := mustRegister(t, svc, "alice")

	for _, tc := range []struct {
		name string
		req  AdminDisableKeyRequest
		code apperrors.Code
	}{
		{"bad key id", AdminDisableKeyRequest{KeyID: "nope", Reason: "r", AdminSubject: "a"}, apperrors.CodeInvalidFormat},
		{"missing reason", AdminDisableKeyRequest{KeyID: k1.ID.String(), AdminSubject: "a"}, apperrors.CodeInvalidFormat},
		{"missing subject", AdminDisableKeyRequest{KeyID: k1.ID.String(), Reason: "r"}, apperrors.CodeInvalidFormat},
		{"unknown key", AdminDisableKeyRequest{KeyID: uuid.NewString(), Reason: "r", AdminSubject: "a"}, apperrors.CodeNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AdminDisableKey(ctx, tc.req)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
		})
	}
}

func TestStoreFailureSurfacesAsRetryable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, _, sg1 := mustRegister(t, svc, "alice")

	// The store layer wraps transient failures before they reach the
	// service; the service must pass the code through untouched.
	st.failWith = apperrors.StoreUnavailable(errors.New("connection refused"))
	_, err := svc.AddKey(ctx, addKeyRequest("alice", newSigner(t), sg1))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStoreUnavailable, apperrors.CodeOf(err))
	assert.True(t, apperrors.CodeOf(err).Retryable())
}
