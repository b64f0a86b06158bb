package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

func (s *Store) CreateKey(ctx context.Context, key *model.PublicKey) error {
	return wrapErr(s.db.WithContext(ctx).Create(key).Error)
}

func (s *Store) KeyByID(ctx context.Context, id uuid.UUID) (*model.PublicKey, error) {
	var key model.PublicKey
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&key)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr(tx.Error)
	}
	return &key, nil
}

func (s *Store) KeyByPublicKey(ctx context.Context, publicKey []byte) (*model.PublicKey, error) {
	var key model.PublicKey
	tx := s.db.WithContext(ctx).Where("public_key = ?", publicKey).First(&key)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr(tx.Error)
	}
	return &key, nil
}

func (s *Store) KeysForAccount(ctx context.Context, accountID uuid.UUID) ([]model.PublicKey, error) {
	var keys []model.PublicKey
	tx := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("added_at ASC").
		Find(&keys)
	if tx.Error != nil {
		return nil, wrapErr(tx.Error)
	}
	return keys, nil
}

func (s *Store) CountActiveKeys(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.PublicKey{}).
		Where("account_id = ? AND is_active", accountID).
		Count(&count)
	if tx.Error != nil {
		return 0, wrapErr(tx.Error)
	}
	return int(count), nil
}

// DisableKey persists only the disable-transition columns. The row itself
// stays forever; there is no delete path through this store.
func (s *Store) DisableKey(ctx context.Context, key *model.PublicKey) error {
	tx := s.db.WithContext(ctx).Model(&model.PublicKey{}).
		Where("id = ?", key.ID).
		Updates(map[string]interface{}{
			"is_active":          false,
			"disabled_at":        key.DisabledAt,
			"disabled_by_key_id": key.DisabledByKeyID,
		})
	return wrapErr(tx.Error)
}

func (s *Store) PrincipalInUse(ctx context.Context, principal string) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.PublicKey{}).
		Where("principal = ?", principal).
		Count(&count)
	if tx.Error != nil {
		return false, wrapErr(tx.Error)
	}
	return count > 0, nil
}
