// Package accounts provides database operations for login accounts.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	acct, err := repo.GetByEmail(ctx, "a@x.com")
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/entities"
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. A clash on the unique email index is
// reported as apperrors.ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, acct *entities.Account) error {
	acct.Email = entities.NormalizeEmail(acct.Email)
	if err := r.db.WithContext(ctx).Create(acct).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create account %s: %w", acct.Email, apperrors.ErrDuplicateEmail)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Account, error) {
	var acct entities.Account
	err := r.db.WithContext(ctx).First(&acct, id).Error
	if err != nil {
		return nil, translateNotFound(err, fmt.Sprintf("account %d", id))
	}
	return &acct, nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var acct entities.Account
	err := r.db.WithContext(ctx).Where("email = ?", entities.NormalizeEmail(email)).First(&acct).Error
	if err != nil {
		return nil, translateNotFound(err, "account "+email)
	}
	return &acct, nil
}

// List returns all accounts, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Account, error) {
	var accts []entities.Account
	err := r.db.WithContext(ctx).Order("id DESC").Find(&accts).Error
	return accts, err
}

// Count returns the number of accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Account{}).Count(&n).Error
	return n, err
}

// Update writes the mutable columns of acct, including zero values.
func (r *Repository) Update(ctx context.Context, acct *entities.Account) error {
	acct.Email = entities.NormalizeEmail(acct.Email)
	result := r.db.WithContext(ctx).
		Model(acct).
		Select("email", "password_hash", "is_active", "is_admin").
		Updates(acct)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("update account %d: %w", acct.ID, apperrors.ErrDuplicateEmail)
		}
		return fmt.Errorf("update account %d: %w", acct.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account %d: %w", acct.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes an account together with its login history.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entities.Account{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete account %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("account %d: %w", id, apperrors.ErrNotFound)
		}

		if err := tx.Where("account_id = ?", id).Delete(&entities.LoginEvent{}).Error; err != nil {
			return fmt.Errorf("delete login events of account %d: %w", id, err)
		}
		return nil
	})
}

func translateNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
