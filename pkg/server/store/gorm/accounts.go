package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scriptmarket/identity-in-go/pkg/model"
)

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	return wrapErr(s.db.WithContext(ctx).Create(account).Error)
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	tx := s.db.WithContext(ctx).Where("username = ?", username).First(&account)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr(tx.Error)
	}
	return &account, nil
}

func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&account)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr(tx.Error)
	}
	return &account, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *model.Account) error {
	return wrapErr(s.db.WithContext(ctx).Save(account).Error)
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.Account{}).Where("username = ?", username).Count(&count)
	if tx.Error != nil {
		return false, wrapErr(tx.Error)
	}
	return count > 0, nil
}
