// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contract
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a contract is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// The scheduler-facing functions deserve a note:
//
//   - ListDueContracts returns the candidate set for a reminder run: every
//     non-deleted contract whose renewal date is on or after the given day,
//     with the owning user preloaded so the recipient address can be
//     resolved without per-row queries. Contracts already past their
//     renewal date are excluded by design, so a missed tier can never fire
//     for an expired renewal.
//
//   - MarkReminderSent sets a single tier flag with compare-and-set
//     semantics: the update applies only while the flag is still false.
//     It reports whether this call performed the transition, which lets two
//     overlapping runs agree on who recorded the send.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateContract inserts a new contract row owned by userID. The ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateContract(ctx context.Context, db *gorm.DB, c *domain.Contract) (*domain.Contract, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetContract fetches a single contract by its ID and owner. If the record
// does not exist, it returns ErrNotFound.
func GetContract(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Contract, error) {
	var c domain.Contract
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountContracts returns the total number of contracts owned by userID.
func CountContracts(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListContractsPage returns a paginated slice of contracts for userID,
// ordered by renewal date ascending (soonest deadline first). Use
// CountContracts to obtain the total for pagination metadata.
func ListContractsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Contract, error) {
	var out []domain.Contract
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("renewal_date asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateContract applies the given column updates to a contract identified
// by id and owned by userID. If no rows are affected (contract missing or
// not owned by userID), it returns ErrNotFound.
func UpdateContract(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteContract soft-deletes a contract owned by userID. Returns
// ErrNotFound when the contract does not exist or belongs to someone else.
func DeleteContract(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Contract{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueContracts returns the reminder candidate set: all contracts whose
// renewal date is on or after today, with the owning user preloaded.
// today must already be truncated to UTC midnight (domain.Today).
func ListDueContracts(ctx context.Context, db *gorm.DB, today time.Time) ([]domain.Contract, error) {
	var out []domain.Contract
	err := db.WithContext(ctx).
		Preload("User").
		Where("renewal_date >= ?", today).
		Order("renewal_date asc").
		Find(&out).Error
	return out, err
}

// MarkReminderSent sets the flag column for tier on the given contract,
// but only while the flag is still false. It returns true when this call
// performed the transition; false means another run got there first.
func MarkReminderSent(ctx context.Context, db *gorm.DB, contractID string, tier domain.Tier) (bool, error) {
	col := tier.FlagColumn()
	res := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("id = ? AND "+col+" = ?", contractID, false).
		Update(col, true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
