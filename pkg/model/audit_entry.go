package model

import (
	"time"

	"github.com/google/uuid"
)

// Request actions recorded in the audit log. These strings are both the
// signed `action` field of the canonical payload and the audit row action.
const (
	ActionRegisterAccount     = "register_account"
	ActionAddKey              = "add_key"
	ActionRemoveKey           = "remove_key"
	ActionUpdateProfile       = "update_profile"
	ActionAdminDisableKey     = "admin_disable_key"
	ActionAdminAddRecoveryKey = "admin_add_recovery_key"
)

// AuditEntry is one row of the append-only signature audit log. It doubles
// as the replay guard's source of truth via the (nonce, created_at) index.
// Rows are never updated or deleted; retention pruning of rows older than
// the configured window is a separate maintenance task.
type AuditEntry struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	AccountID        *uuid.UUID `gorm:"column:account_id;type:uuid"`
	Action           string     `gorm:"column:action"`
	CanonicalPayload []byte     `gorm:"column:canonical_payload"`
	Signature        []byte     `gorm:"column:signature"`
	PublicKey        []byte     `gorm:"column:public_key"`
	RequestTimestamp int64      `gorm:"column:request_timestamp"`
	Nonce            string     `gorm:"column:nonce"`
	IsAdminAction    bool       `gorm:"column:is_admin_action"`
	AdminSubject     string     `gorm:"column:admin_subject"`
	Reason           string     `gorm:"column:reason"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AuditEntry) TableName() string {
	return "signature_audit"
}
