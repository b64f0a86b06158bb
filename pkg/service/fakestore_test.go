package service

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// fakeStore is an in-memory store.Store. Atomic snapshots the whole state
// and restores it when fn fails, mirroring transaction rollback closely
// enough to test the all-or-nothing behavior of the pipeline.
type fakeStore struct {
	accounts map[uuid.UUID]*model.Account
	keys     map[uuid.UUID]*model.PublicKey
	entries  []model.AuditEntry

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[uuid.UUID]*model.Account{},
		keys:     map[uuid.UUID]*model.PublicKey{},
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for id, a := range f.accounts {
		copied := *a
		snap.accounts[id] = &copied
	}
	for id, k := range f.keys {
		copied := *k
		snap.keys[id] = &copied
	}
	snap.entries = append([]model.AuditEntry(nil), f.entries...)
	return snap
}

func (f *fakeStore) restore(snap *fakeStore) {
	f.accounts = snap.accounts
	f.keys = snap.keys
	f.entries = snap.entries
}

func (f *fakeStore) Atomic(_ context.Context, fn func(tx store.Store) error) error {
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.failWith
}

func (f *fakeStore) CreateAccount(_ context.Context, account *model.Account) error {
	if f.failWith != nil {
		return f.failWith
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeStore) AccountByUsername(_ context.Context, username string) (*model.Account, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, a := range f.accounts {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateAccount(_ context.Context, account *model.Account) error {
	if f.failWith != nil {
		return f.failWith
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeStore) AccountByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if a, ok := f.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	account, err := f.AccountByUsername(ctx, username)
	return account != nil, err
}

func (f *fakeStore) CreateKey(_ context.Context, key *model.PublicKey) error {
	if f.failWith != nil {
		return f.failWith
	}
	copied := *key
	f.keys[key.ID] = &copied
	return nil
}

func (f *fakeStore) KeyByID(_ context.Context, id uuid.UUID) (*model.PublicKey, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if k, ok := f.keys[id]; ok {
		copied := *k
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) KeyByPublicKey(_ context.Context, publicKey []byte) (*model.PublicKey, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, k := range f.keys {
		if bytes.Equal(k.PublicKey, publicKey) {
			copied := *k
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) KeysForAccount(_ context.Context, accountID uuid.UUID) ([]model.PublicKey, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var keys []model.PublicKey
	for _, k := range f.keys {
		if k.AccountID == accountID {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

func (f *fakeStore) CountActiveKeys(_ context.Context, accountID uuid.UUID) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	count := 0
	for _, k := range f.keys {
		if k.AccountID == accountID && k.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DisableKey(_ context.Context, key *model.PublicKey) error {
	if f.failWith != nil {
		return f.failWith
	}
	stored, ok := f.keys[key.ID]
	if !ok {
		return nil
	}
	stored.IsActive = key.IsActive
	stored.DisabledAt = key.DisabledAt
	stored.DisabledByKeyID = key.DisabledByKeyID
	return nil
}

func (f *fakeStore) PrincipalInUse(_ context.Context, principal string) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, k := range f.keys {
		if k.Principal == principal {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Append(_ context.Context, entry *model.AuditEntry) error {
	if f.failWith != nil {
		return f.failWith
	}
	copied := *entry
	copied.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, copied)
	return nil
}

func (f *fakeStore) NonceSeen(_ context.Context, nonce string, since time.Time) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, e := range f.entries {
		if e.Nonce == nonce && !e.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
