package model

import (
	"time"

	"github.com/google/uuid"
)

// PublicKey is a signing key bound to exactly one account. A key is never
// hard-deleted: disabling flips IsActive and stamps the disable metadata,
// keeping the public key and principal reserved forever.
type PublicKey struct {
	ID              uuid.UUID  `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	AccountID       uuid.UUID  `gorm:"column:account_id;type:uuid" json:"accountId"`
	Algorithm       string     `gorm:"column:algorithm" json:"algorithm"`
	PublicKey       []byte     `gorm:"column:public_key;uniqueIndex" json:"publicKey"`
	Principal       string     `gorm:"column:principal;uniqueIndex" json:"principal"`
	IsActive        bool       `gorm:"column:is_active" json:"isActive"`
	AddedAt         time.Time  `gorm:"column:added_at;autoCreateTime" json:"addedAt"`
	DisabledAt      *time.Time `gorm:"column:disabled_at" json:"disabledAt,omitempty"`
	DisabledByKeyID *uuid.UUID `gorm:"column:disabled_by_key_id;type:uuid" json:"disabledByKeyId,omitempty"`
}

func (PublicKey) TableName() string {
	return "account_public_keys"
}

// Disable marks the key disabled. byKeyID is the signing key that authorized
// the removal, nil for admin overrides. The transition is terminal.
func (k *PublicKey) Disable(at time.Time, byKeyID *uuid.UUID) {
	k.IsActive = false
	k.DisabledAt = &at
	k.DisabledByKeyID = byKeyID
}
