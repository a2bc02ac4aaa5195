// Package domain defines the persistence models for users, contracts, and
// reminder logs. These types are mapped with GORM and form the core data
// layer of the renewal-reminder application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns contracts and receives reminder
// e-mails.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier and reminder recipient address.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Name: optional display name; when empty the local part of the e-mail
//     address is used for salutations.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(255);not null"`
	Name         string         `json:"name,omitempty" gorm:"type:varchar(120)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Contract represents an uploaded agreement tracked for renewal. A contract
// belongs to exactly one user and carries three independent reminder flags,
// one per tier (30-day, 7-day, day-of). Once a flag is set it is never
// cleared for the same renewal date; editing the renewal date starts a new
// cycle and resets all three.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: owner (indexed, FK to users with cascade delete).
//   - Name: contract title, required.
//   - VendorName / Notes: optional descriptive fields.
//   - FileKey: object-store key of the uploaded PDF.
//   - StartDate: optional calendar date.
//   - RenewalDate: required calendar date; all day math happens at UTC
//     midnight.
//   - NoticePeriodDays: optional cancellation notice window.
//   - AutoRenews: whether the contract renews automatically.
//   - ContractValue: optional annual value.
//   - Reminder30Sent / Reminder7Sent / ReminderDaySent: per-tier delivery
//     flags, monotonic per renewal cycle.
type Contract struct {
	ID               string         `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID           string         `json:"user_id"            gorm:"type:char(36);not null;index:idx_user_contracts"`
	Name             string         `json:"name"               gorm:"type:varchar(255);not null"`
	VendorName       string         `json:"vendor_name,omitempty" gorm:"type:varchar(255)"`
	FileKey          string         `json:"file_key,omitempty" gorm:"type:varchar(512)"`
	Notes            string         `json:"notes,omitempty"    gorm:"type:text"`
	StartDate        *time.Time     `json:"start_date,omitempty" gorm:"type:date"`
	RenewalDate      time.Time      `json:"renewal_date"       gorm:"type:date;not null;index"`
	NoticePeriodDays *int           `json:"notice_period_days,omitempty"`
	AutoRenews       bool           `json:"auto_renews"        gorm:"not null;default:false"`
	ContractValue    *float64       `json:"contract_value,omitempty"`
	Reminder30Sent   bool           `json:"reminder_30_sent"   gorm:"column:reminder_30_sent;not null;default:false"`
	Reminder7Sent    bool           `json:"reminder_7_sent"    gorm:"column:reminder_7_sent;not null;default:false"`
	ReminderDaySent  bool           `json:"reminder_day_sent"  gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`

	// User is the owning account. Contracts are cascade-deleted when the
	// owner is removed.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Contract.
func (Contract) TableName() string { return "contracts" }

// ReminderLog records a single reminder delivery attempt. It is an audit
// trail written by the scheduler; deduplication relies on the contract's
// reminder flags, not on this table.
type ReminderLog struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ContractID string    `json:"contract_id" gorm:"type:char(36);not null;index"`
	Tier       int       `json:"tier"        gorm:"not null"`
	Recipient  string    `json:"recipient"   gorm:"type:varchar(255);not null"`
	Status     string    `json:"status"      gorm:"type:varchar(16);not null;check:status IN ('sent','failed')"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	SentAt     time.Time `json:"sent_at"`

	Contract Contract `json:"-" gorm:"foreignKey:ContractID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ReminderLog.
func (ReminderLog) TableName() string { return "reminder_logs" }

// Reminder log status values.
const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)
