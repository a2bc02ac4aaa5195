package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
)

func validContractBody() map[string]any {
	return map[string]any{
		"name":         "Office lease",
		"vendor_name":  "Acme Properties",
		"renewal_date": "2026-07-01",
	}
}

func TestCreateContract_Success(t *testing.T) {
	d := newTestDeps()
	w := doJSON(t, newTestRouter(d), http.MethodPost, "/contracts", validContractBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	var got domain.Contract
	decodeBody(t, w, &got)
	if got.Name != "Office lease" || got.UserID != "u-1" {
		t.Fatalf("response unexpected: %+v", got)
	}
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !d.contract.lastInput.RenewalDate.Equal(want) {
		t.Fatalf("parsed renewal = %v, want %v", d.contract.lastInput.RenewalDate, want)
	}
}

func TestCreateContract_BadInput(t *testing.T) {
	d := newTestDeps()
	r := newTestRouter(d)

	cases := []map[string]any{
		{"vendor_name": "Acme"},                                // missing name and renewal
		{"name": "X"},                                          // missing renewal
		{"name": "X", "renewal_date": "01/07/2026"},            // wrong date format
		{"name": "X", "renewal_date": "2026-07-01", "start_date": "bad"},
	}
	for _, body := range cases {
		if w := doJSON(t, r, http.MethodPost, "/contracts", body); w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetContract_FoundAndNotFound(t *testing.T) {
	d := newTestDeps()
	id := uuid.NewString()
	d.contract.contracts[id] = &domain.Contract{ID: id, UserID: "u-1", Name: "Lease"}
	r := newTestRouter(d)

	w := doJSON(t, r, http.MethodGet, "/contracts/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/contracts/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing contract: status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/contracts/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", w.Code)
	}
}

func TestListContracts_PaginationEnvelope(t *testing.T) {
	d := newTestDeps()
	id := uuid.NewString()
	d.contract.contracts[id] = &domain.Contract{ID: id, UserID: "u-1", Name: "Lease"}

	w := doJSON(t, newTestRouter(d), http.MethodGet, "/contracts?page=1&page_size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListContractsResponse
	decodeBody(t, w, &resp)
	if len(resp.Contracts) != 1 || resp.Pagination.Total != 1 ||
		resp.Pagination.Page != 1 || resp.Pagination.PageSize != 10 || resp.Pagination.HasNext {
		t.Fatalf("envelope unexpected: %+v", resp)
	}
}

func TestUpdateContract_NotFoundAndSuccess(t *testing.T) {
	d := newTestDeps()
	id := uuid.NewString()
	d.contract.contracts[id] = &domain.Contract{ID: id, UserID: "u-1", Name: "Lease"}
	r := newTestRouter(d)

	w := doJSON(t, r, http.MethodPut, "/contracts/"+id, validContractBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/contracts/"+uuid.NewString(), validContractBody())
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing contract: status = %d, want 404", w.Code)
	}
}

func TestDeleteContract(t *testing.T) {
	d := newTestDeps()
	id := uuid.NewString()
	d.contract.contracts[id] = &domain.Contract{ID: id, UserID: "u-1"}
	r := newTestRouter(d)

	w := doJSON(t, r, http.MethodDelete, "/contracts/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/contracts/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", w.Code)
	}
}

func TestUploadContract(t *testing.T) {
	d := newTestDeps()
	r := newTestRouter(d)

	w := doMultipart(t, r, "/contracts/upload", "file", "lease.pdf", []byte("%PDF-1.7 data"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	decodeBody(t, w, &resp)
	if resp.FileKey != "contracts/u-1/abc.pdf" {
		t.Fatalf("file key = %q", resp.FileKey)
	}
	if d.store.gotName != "lease.pdf" || d.store.gotSize == 0 {
		t.Fatalf("store saw name=%q size=%d", d.store.gotName, d.store.gotSize)
	}

	// Missing file field.
	if w := doMultipart(t, r, "/contracts/upload", "", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing file: status = %d, want 400", w.Code)
	}
}

func TestUploadContract_StoreFailures(t *testing.T) {
	d := newTestDeps()
	d.store.uploadErr = errors.New("bucket gone")
	w := doMultipart(t, newTestRouter(d), "/contracts/upload", "file", "x.pdf", []byte("data"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("upload error: status = %d, want 500", w.Code)
	}

	// No store configured at all.
	d2 := newTestDeps()
	d2.nilStore = true
	w = doMultipart(t, newTestRouter(d2), "/contracts/upload", "file", "x.pdf", []byte("data"))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil store: status = %d, want 503", w.Code)
	}
}

func TestContractFileURL(t *testing.T) {
	d := newTestDeps()
	id := uuid.NewString()
	d.contract.contracts[id] = &domain.Contract{ID: id, UserID: "u-1", FileKey: "contracts/u-1/abc.pdf"}
	noFile := uuid.NewString()
	d.contract.contracts[noFile] = &domain.Contract{ID: noFile, UserID: "u-1"}
	r := newTestRouter(d)

	w := doJSON(t, r, http.MethodGet, "/contracts/"+id+"/file", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	var resp FileURLResponse
	decodeBody(t, w, &resp)
	if resp.URL != "https://files/abc" || resp.ExpiresIn != 900 {
		t.Fatalf("response unexpected: %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/contracts/"+noFile+"/file", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no file: status = %d, want 404", w.Code)
	}
}
