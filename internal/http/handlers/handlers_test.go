package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
	"github.com/renewalradar/go-renewal-backend/internal/services"
	"github.com/renewalradar/go-renewal-backend/internal/storage"
)

// ---------- fakes ----------

type fakeAccountSvc struct {
	registerErr error
	loginErr    error
	user        domain.User
	token       string
	expires     time.Time
}

func (f *fakeAccountSvc) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	u := f.user
	if u.Email == "" {
		u = domain.User{ID: "u-1", Email: email, Name: name}
	}
	return &u, nil
}

func (f *fakeAccountSvc) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if f.loginErr != nil {
		return "", time.Time{}, f.loginErr
	}
	return f.token, f.expires, nil
}

type fakeContractSvc struct {
	contracts map[string]*domain.Contract
	createErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error
	lastInput services.ContractInput
}

func (f *fakeContractSvc) Create(ctx context.Context, userID string, in services.ContractInput) (*domain.Contract, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Contract{ID: "c-1", UserID: userID, Name: in.Name, RenewalDate: in.RenewalDate}, nil
}

func (f *fakeContractSvc) Get(ctx context.Context, userID, id string) (*domain.Contract, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if c, okk := f.contracts[id]; okk {
		return c, nil
	}
	return nil, services.ErrContractNotFound
}

func (f *fakeContractSvc) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Contract, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []domain.Contract
	for _, c := range f.contracts {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeContractSvc) Update(ctx context.Context, userID, id string, in services.ContractInput) (*domain.Contract, error) {
	f.lastInput = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	c, okk := f.contracts[id]
	if !okk {
		return nil, services.ErrContractNotFound
	}
	updated := *c
	updated.Name = in.Name
	updated.RenewalDate = in.RenewalDate
	return &updated, nil
}

func (f *fakeContractSvc) Delete(ctx context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, okk := f.contracts[id]; !okk {
		return services.ErrContractNotFound
	}
	delete(f.contracts, id)
	return nil
}

type fakeExtractor struct {
	dates services.ExtractedDates
	err   error
	text  string
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (services.ExtractedDates, error) {
	f.text = text
	return f.dates, f.err
}

type fakeRunner struct {
	summary services.RunSummary
	err     error
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, now time.Time) (services.RunSummary, error) {
	f.calls++
	return f.summary, f.err
}

type fakeStore struct {
	uploadKey string
	uploadErr error
	url       string
	signErr   error
	gotName   string
	gotSize   int64
}

func (f *fakeStore) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	f.gotName = filename
	f.gotSize = size
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadKey, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.url, nil
}

// ---------- router helper ----------

type testDeps struct {
	account  *fakeAccountSvc
	contract *fakeContractSvc
	extract  *fakeExtractor
	runner   *fakeRunner
	store    *fakeStore
	nilStore bool
	opts     Options
}

func newTestDeps() *testDeps {
	return &testDeps{
		account:  &fakeAccountSvc{token: "tok", expires: time.Now().Add(time.Hour)},
		contract: &fakeContractSvc{contracts: map[string]*domain.Contract{}},
		extract:  &fakeExtractor{},
		runner:   &fakeRunner{},
		store:    &fakeStore{uploadKey: "contracts/u-1/abc.pdf", url: "https://files/abc"},
		opts:     Options{CronSecret: "topsecret"},
	}
}

// newTestRouter mounts every handler behind a stub auth layer that pins the
// current user to "u-1".
func newTestRouter(d *testDeps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var store storage.ObjectStore
	if !d.nilStore {
		store = d.store
	}
	h := New(d.account, d.contract, d.extract, d.runner, store, d.opts)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/cron/send-reminders", h.TriggerReminders)
	r.GET("/cron/send-reminders", h.RemindersAlive)

	auth := r.Group("/", func(c *gin.Context) { c.Set("userID", "u-1") })
	auth.POST("/contracts", h.CreateContract)
	auth.GET("/contracts", h.ListContracts)
	auth.GET("/contracts/:id", h.GetContract)
	auth.PUT("/contracts/:id", h.UpdateContract)
	auth.DELETE("/contracts/:id", h.DeleteContract)
	auth.POST("/contracts/upload", h.UploadContract)
	auth.GET("/contracts/:id/file", h.ContractFileURL)
	auth.POST("/contracts/extract", h.ExtractContract)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r *gin.Engine, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		fw.Write(content)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}
