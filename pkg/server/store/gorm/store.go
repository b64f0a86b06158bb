package gorm

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// Store implements store.Store using GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	// Serializable transactions fail on contention instead of blocking;
	// a small retry budget absorbs the common case of two requests racing
	// on the same account or nonce.
	maxTxRetries = 3
)

// Atomic runs fn in a serializable transaction, retrying serialization
// conflicts. Each attempt sees a fresh snapshot; fn must therefore be safe
// to re-run from the top.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&Store{db: tx})
		}, opts)

		if !isSerializationConflict(err) {
			return err
		}
	}
	return apperrors.StoreUnavailable(err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// wrapErr maps driver and context failures to the transient taxonomy code.
// AppErrors pass through untouched.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var app *apperrors.AppError
	if errors.As(err, &app) {
		return err
	}
	return apperrors.StoreUnavailable(err)
}
