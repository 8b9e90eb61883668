package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AccountRepository provides account-related database operations. The
// engine reads privacy/active flags from here and writes the derived
// follow counters; it never touches credential state.
type AccountRepository struct {
	*Repository
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(repo *Repository) *AccountRepository {
	return &AccountRepository{Repository: repo}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByName retrieves an account by name
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByIDs retrieves multiple accounts by IDs
func (r *AccountRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// SetLastRead updates the lastread_at timestamp for an account
func (r *AccountRepository) SetLastRead(ctx context.Context, accountID int64, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("lastread_at", date).Error
}

// ListIDs returns all account IDs, used by the reconciliation job.
func (r *AccountRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
