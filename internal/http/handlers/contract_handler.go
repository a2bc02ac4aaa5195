// Contract HTTP handlers.
//
// This file exposes REST endpoints for contract resources:
//   - POST   /contracts            (create)
//   - GET    /contracts            (list, paginated)
//   - GET    /contracts/{id}       (fetch)
//   - PUT    /contracts/{id}       (update; renewal change restarts reminders)
//   - DELETE /contracts/{id}       (delete)
//   - POST   /contracts/upload     (store a PDF, returns file_key)
//   - GET    /contracts/{id}/file  (presigned download URL)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
	"github.com/renewalradar/go-renewal-backend/internal/http/middleware"
	"github.com/renewalradar/go-renewal-backend/internal/services"
	"github.com/renewalradar/go-renewal-backend/internal/storage"
	"github.com/renewalradar/go-renewal-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ContractService defines contract lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type ContractService interface {
	Create(ctx context.Context, userID string, in services.ContractInput) (*domain.Contract, error)
	Get(ctx context.Context, userID, id string) (*domain.Contract, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Contract, int64, error)
	Update(ctx context.Context, userID, id string, in services.ContractInput) (*domain.Contract, error)
	Delete(ctx context.Context, userID, id string) error
}

// AccountService defines the registration and login operations consumed by
// the auth endpoints.
type AccountService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// Extractor turns raw contract text into structured date suggestions.
type Extractor interface {
	Extract(ctx context.Context, text string) (services.ExtractedDates, error)
}

// ReminderRunner executes one reminder batch.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (services.RunSummary, error)
}

//
// Handler wiring
//

// Options carries the HTTP-layer tunables the handlers need beyond their
// service dependencies.
type Options struct {
	// CronSecret guards the reminder trigger endpoint. Empty disables it.
	CronSecret string
	// MaxUploadBytes bounds multipart file uploads.
	MaxUploadBytes int64
	// MinContractText is the minimum extracted rune count accepted for
	// date extraction.
	MinContractText int
}

// Handlers groups the HTTP endpoints for auth, contracts, extraction, and
// the reminder trigger. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	accountSvc  AccountService
	contractSvc ContractService
	extractor   Extractor
	reminderSvc ReminderRunner
	store       storage.ObjectStore
	opts        Options
}

// New constructs a Handlers instance bound to the given services. The
// object store may be nil, in which case upload and file-URL endpoints
// report 503.
func New(account AccountService, contracts ContractService, extractor Extractor,
	reminders ReminderRunner, store storage.ObjectStore, opts Options) *Handlers {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.MinContractText <= 0 {
		opts.MinContractText = 50
	}
	return &Handlers{
		accountSvc:  account,
		contractSvc: contracts,
		extractor:   extractor,
		reminderSvc: reminders,
		store:       store,
		opts:        opts,
	}
}

//
// DTOs
//

// ContractRequest is the JSON payload for creating or updating a contract.
type ContractRequest struct {
	Name             string   `json:"name" binding:"required" example:"Office lease"`
	VendorName       string   `json:"vendor_name" example:"Acme Properties"`
	FileKey          string   `json:"file_key" example:"contracts/u1/9f3c.pdf"`
	Notes            string   `json:"notes"`
	StartDate        *string  `json:"start_date" example:"2025-07-01"`
	RenewalDate      string   `json:"renewal_date" binding:"required" example:"2026-07-01"`
	NoticePeriodDays *int     `json:"notice_period_days" example:"60"`
	AutoRenews       bool     `json:"auto_renews"`
	ContractValue    *float64 `json:"contract_value" example:"24000"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListContractsResponse wraps a page of contracts and pagination information.
type ListContractsResponse struct {
	Contracts  []domain.Contract `json:"contracts"`
	Pagination Pagination        `json:"pagination"`
}

// UploadResponse returns the object key of a stored contract file.
type UploadResponse struct {
	FileKey string `json:"file_key" example:"contracts/u1/9f3c.pdf"`
}

// FileURLResponse returns a presigned download URL.
type FileURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in" example:"900"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// contractInput converts the wire DTO into the service input, parsing the
// date fields. The error message names the offending field.
func contractInput(req ContractRequest) (services.ContractInput, string) {
	renewal, err := utils.ParseDate(req.RenewalDate)
	if err != nil {
		return services.ContractInput{}, "renewal_date must be YYYY-MM-DD"
	}
	in := services.ContractInput{
		Name:             req.Name,
		VendorName:       req.VendorName,
		FileKey:          req.FileKey,
		Notes:            req.Notes,
		RenewalDate:      renewal,
		NoticePeriodDays: req.NoticePeriodDays,
		AutoRenews:       req.AutoRenews,
		ContractValue:    req.ContractValue,
	}
	if req.StartDate != nil && *req.StartDate != "" {
		start, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			return services.ContractInput{}, "start_date must be YYYY-MM-DD"
		}
		in.StartDate = &start
	}
	return in, ""
}

//
// Handlers
//

// CreateContract godoc
// @ID          createContract
// @Summary     Create a contract
// @Description Creates a contract for the current user and returns the resource.
// @Tags        Contracts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ContractRequest  true  "Contract payload"
//
// @Success     201  {object}  domain.Contract
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contracts [post]
func (h *Handlers) CreateContract(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	in, msg := contractInput(req)
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	created, err := h.contractSvc.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) || errors.Is(err, services.ErrRenewalDateRequired) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListContracts godoc
// @ID          listContracts
// @Summary     List contracts (paginated)
// @Description Returns a page of the user's contracts ordered by upcoming renewal.
// @Tags        Contracts
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListContractsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contracts [get]
func (h *Handlers) ListContracts(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.contractSvc.ListPage(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListContractsResponse{
		Contracts: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetContract godoc
// @ID          getContract
// @Summary     Fetch one contract
// @Tags        Contracts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Contract
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id} [get]
func (h *Handlers) GetContract(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contract id must be a UUID")
		return
	}

	contract, err := h.contractSvc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contract not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, contract)
}

// UpdateContract godoc
// @ID          updateContract
// @Summary     Update a contract
// @Description Updates a contract owned by the current user. Changing the renewal date restarts the reminder cycle.
// @Tags        Contracts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                    true  "Contract ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ContractRequest  true  "Updated contract payload"
//
// @Success     200  {object}  domain.Contract
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contracts/{id} [put]
func (h *Handlers) UpdateContract(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contract id must be a UUID")
		return
	}

	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	in, msg := contractInput(req)
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	updated, err := h.contractSvc.Update(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContractNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contract not found")
		case errors.Is(err, services.ErrNameRequired), errors.Is(err, services.ErrRenewalDateRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteContract godoc
// @ID          deleteContract
// @Summary     Delete a contract
// @Tags        Contracts
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id} [delete]
func (h *Handlers) DeleteContract(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contract id must be a UUID")
		return
	}

	if err := h.contractSvc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contract not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// UploadContract godoc
// @ID          uploadContract
// @Summary     Upload a contract PDF
// @Description Stores the file in object storage and returns its key for use in contract create/update.
// @Tags        Contracts
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       file  formData  file  true  "PDF document"
//
// @Success     200  {object}  handlers.UploadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /contracts/upload [post]
func (h *Handlers) UploadContract(c *gin.Context) {
	if h.store == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUploadFailed, "object storage not configured")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' required")
		return
	}
	if fh.Size > h.opts.MaxUploadBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	key, err := h.store.Upload(c.Request.Context(), middleware.UserID(c), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, UploadResponse{FileKey: key})
}

// ContractFileURL godoc
// @ID          contractFileURL
// @Summary     Presigned download URL for a contract file
// @Tags        Contracts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.FileURLResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Contract or file not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /contracts/{id}/file [get]
func (h *Handlers) ContractFileURL(c *gin.Context) {
	if h.store == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "object storage not configured")
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contract id must be a UUID")
		return
	}

	contract, err := h.contractSvc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contract not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if contract.FileKey == "" {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "contract has no file")
		return
	}

	const expiry = 15 * time.Minute
	url, err := h.store.PresignGet(c.Request.Context(), contract.FileKey, expiry)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, FileURLResponse{URL: url, ExpiresIn: int(expiry.Seconds())})
}
