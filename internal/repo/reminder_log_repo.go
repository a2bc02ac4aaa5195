// Package repo – reminder log repository.
//
// Append-only audit trail of reminder delivery attempts. The scheduler
// writes one row per attempt; the dedup rule itself reads only the contract
// flags, never this table.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
)

// AppendReminderLog records a delivery attempt for contractID at the given
// tier. errMsg is empty for successful sends.
func AppendReminderLog(ctx context.Context, db *gorm.DB, contractID string, tier domain.Tier, recipient, status, errMsg string, at time.Time) error {
	rl := &domain.ReminderLog{
		ID:         uuid.NewString(),
		ContractID: contractID,
		Tier:       int(tier),
		Recipient:  recipient,
		Status:     status,
		Error:      errMsg,
		SentAt:     at,
	}
	return db.WithContext(ctx).Create(rl).Error
}

// ListReminderLogs returns the delivery history for a contract, newest
// first.
func ListReminderLogs(ctx context.Context, db *gorm.DB, contractID string) ([]domain.ReminderLog, error) {
	var out []domain.ReminderLog
	err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("sent_at desc").
		Find(&out).Error
	return out, err
}
