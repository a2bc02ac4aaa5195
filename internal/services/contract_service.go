// Package services – ContractService
//
// This file implements the ContractService, which manages the lifecycle of
// contracts: create (with field validation), paginated listing, retrieval,
// updates, and deletion, all scoped to the owning user. It also owns the
// one business rule around edits: changing the renewal date starts a new
// renewal cycle, so all three reminder flags reset to false. Flags are
// never reset by any other edit — within one cycle they only ever move from
// false to true.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
	"github.com/renewalradar/go-renewal-backend/internal/repo"
)

// ContractInput carries the user-editable contract fields.
type ContractInput struct {
	Name             string
	VendorName       string
	FileKey          string
	Notes            string
	StartDate        *time.Time
	RenewalDate      time.Time
	NoticePeriodDays *int
	AutoRenews       bool
	ContractValue    *float64
}

// ContractService provides contract CRUD with ownership enforcement.
type ContractService struct {
	DB *gorm.DB
}

// NewContractService constructs a ContractService.
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{DB: db}
}

// Create validates and persists a new contract for userID.
func (s *ContractService) Create(ctx context.Context, userID string, in ContractInput) (*domain.Contract, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.RenewalDate.IsZero() {
		return nil, ErrRenewalDateRequired
	}

	c := &domain.Contract{
		UserID:           userID,
		Name:             in.Name,
		VendorName:       strings.TrimSpace(in.VendorName),
		FileKey:          in.FileKey,
		Notes:            in.Notes,
		StartDate:        in.StartDate,
		RenewalDate:      domain.Today(in.RenewalDate),
		NoticePeriodDays: in.NoticePeriodDays,
		AutoRenews:       in.AutoRenews,
		ContractValue:    in.ContractValue,
	}
	return repo.CreateContract(ctx, s.DB, c)
}

// Get returns one contract owned by userID, or ErrContractNotFound.
func (s *ContractService) Get(ctx context.Context, userID, id string) (*domain.Contract, error) {
	c, err := repo.GetContract(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListPage returns a page of the user's contracts ordered by upcoming
// renewal, plus the total count. Invalid page/pageSize fall back to
// defaults.
func (s *ContractService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Contract, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountContracts(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Contract{}, 0, nil
	}

	items, err := repo.ListContractsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Update applies the input to an existing contract owned by userID. When
// the renewal date changes, the three reminder flags are reset in the same
// update so the new cycle starts clean.
func (s *ContractService) Update(ctx context.Context, userID, id string, in ContractInput) (*domain.Contract, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.RenewalDate.IsZero() {
		return nil, ErrRenewalDateRequired
	}

	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	newRenewal := domain.Today(in.RenewalDate)
	updates := map[string]any{
		"name":               in.Name,
		"vendor_name":        strings.TrimSpace(in.VendorName),
		"notes":              in.Notes,
		"start_date":         in.StartDate,
		"renewal_date":       newRenewal,
		"notice_period_days": in.NoticePeriodDays,
		"auto_renews":        in.AutoRenews,
		"contract_value":     in.ContractValue,
	}
	if in.FileKey != "" {
		updates["file_key"] = in.FileKey
	}
	if !newRenewal.Equal(domain.Today(current.RenewalDate)) {
		updates["reminder_30_sent"] = false
		updates["reminder_7_sent"] = false
		updates["reminder_day_sent"] = false
	}

	if err := repo.UpdateContract(ctx, s.DB, id, userID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a contract owned by userID.
func (s *ContractService) Delete(ctx context.Context, userID, id string) error {
	if err := repo.DeleteContract(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContractNotFound
		}
		return err
	}
	return nil
}
