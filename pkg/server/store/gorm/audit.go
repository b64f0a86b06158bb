package gorm

import (
	"context"
	"time"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

func (s *Store) Append(ctx context.Context, entry *model.AuditEntry) error {
	return wrapErr(s.db.WithContext(ctx).Create(entry).Error)
}

// NonceSeen relies on the (nonce, created_at) index; it only ever scans the
// lookback window.
func (s *Store) NonceSeen(ctx context.Context, nonce string, since time.Time) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.AuditEntry{}).
		Where("nonce = ? AND created_at >= ?", nonce, since).
		Count(&count)
	if tx.Error != nil {
		return false, wrapErr(tx.Error)
	}
	return count > 0, nil
}
