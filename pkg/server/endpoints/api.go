package endpoints

import (
	"context"
	"time"

	"github.com/scriptmarket/identity-in-go/pkg/model"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// AccountAPI is the service surface the endpoints call. *service.AccountService
// satisfies it; tests substitute a mock.
type AccountAPI interface {
	RegisterAccount(ctx context.Context, req service.RegisterAccountRequest) (*model.Account, *model.PublicKey, error)
	AddKey(ctx context.Context, req service.AddKeyRequest) (*model.PublicKey, error)
	RemoveKey(ctx context.Context, req service.RemoveKeyRequest) (*model.PublicKey, error)
	UpdateProfile(ctx context.Context, req service.UpdateProfileRequest) (*model.Account, error)
	AdminDisableKey(ctx context.Context, req service.AdminDisableKeyRequest) (*model.PublicKey, error)
	AdminAddRecoveryKey(ctx context.Context, req service.AdminRecoveryKeyRequest) (*model.PublicKey, error)
	AccountByUsername(ctx context.Context, username string) (*model.Account, error)
	KeysForAccount(ctx context.Context, username string) ([]model.PublicKey, error)
	Ping(ctx context.Context) error
}

// AccountView is an account in API responses.
type AccountView struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactURL   string    `json:"contactUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// KeyView is a public key record in API responses. Key bytes travel base64.
type KeyView struct {
	ID              string     `json:"id"`
	Algorithm       string     `json:"algorithm"`
	PublicKey       []byte     `json:"publicKey"`
	Principal       string     `json:"principal"`
	IsActive        bool       `json:"isActive"`
	AddedAt         time.Time  `json:"addedAt"`
	DisabledAt      *time.Time `json:"disabledAt,omitempty"`
	DisabledByKeyID string     `json:"disabledByKeyId,omitempty"`
	DisabledByAdmin bool       `json:"disabledByAdmin,omitempty"`
	AddedByAdmin    bool       `json:"addedByAdmin,omitempty"`
}

func accountView(a *model.Account) AccountView {
	return AccountView{
		ID:           a.ID.String(),
		Username:     a.Username,
		DisplayName:  a.DisplayName,
		ContactEmail: a.ContactEmail,
		ContactURL:   a.ContactURL,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func keyView(k *model.PublicKey) KeyView {
	view := KeyView{
		ID:         k.ID.String(),
		Algorithm:  k.Algorithm,
		PublicKey:  k.PublicKey,
		Principal:  k.Principal,
		IsActive:   k.IsActive,
		AddedAt:    k.AddedAt,
		DisabledAt: k.DisabledAt,
	}
	if k.DisabledAt != nil {
		if k.DisabledByKeyID != nil {
			view.DisabledByKeyID = k.DisabledByKeyID.String()
		} else {
			// A disabled key with no disabling key was an admin override.
			view.DisabledByAdmin = true
		}
	}
	return view
}
