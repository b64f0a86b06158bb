package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered identity. Accounts are created once and never
// deleted; profile fields change only through signed update_profile requests.
type Account struct {
	ID           uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex" json:"username"`
	DisplayName  string    `gorm:"column:display_name" json:"displayName"`
	ContactEmail string    `gorm:"column:contact_email" json:"contactEmail,omitempty"`
	ContactURL   string    `gorm:"column:contact_url" json:"contactUrl,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}
