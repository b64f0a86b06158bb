package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// MockAccountAPI implements AccountAPI for testing using testify/mock.
type MockAccountAPI struct {
	mock.Mock
}

func NewMockAccountAPI() *MockAccountAPI {
	return &MockAccountAPI{}
}

func (m *MockAccountAPI) RegisterAccount(ctx context.Context, req service.RegisterAccountRequest) (*model.Account, *model.PublicKey, error) {
	args := m.Called(ctx, req)
	var account *model.Account
	var key *model.PublicKey
	if args.Get(0) != nil {
		account = args.Get(0).(*model.Account)
	}
	if args.Get(1) != nil {
		key = args.Get(1).(*model.PublicKey)
	}
	return account, key, args.Error(2)
}

func (m *MockAccountAPI) AddKey(ctx context.Context, req service.AddKeyRequest) (*model.PublicKey, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicKey), args.Error(1)
}

func (m *MockAccountAPI) RemoveKey(ctx context.Context, req service.RemoveKeyRequest) (*model.PublicKey, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicKey), args.Error(1)
}

func (m *MockAccountAPI) UpdateProfile(ctx context.Context, req service.UpdateProfileRequest) (*model.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountAPI) AdminDisableKey(ctx context.Context, req service.AdminDisableKeyRequest) (*model.PublicKey, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicKey), args.Error(1)
}

func (m *MockAccountAPI) AdminAddRecoveryKey(ctx context.Context, req service.AdminRecoveryKeyRequest) (*model.PublicKey, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicKey), args.Error(1)
}

func (m *MockAccountAPI) AccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountAPI) KeysForAccount(ctx context.Context, username string) ([]model.PublicKey, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PublicKey), args.Error(1)
}

func (m *MockAccountAPI) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
