package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Mock services for testing

type mockDocumentService struct {
	uploadFn   func(ctx context.Context, req driving.UploadRequest) (*driving.UploadResponse, error)
	externalFn func(ctx context.Context, req driving.ExternalRequest) (*driving.UploadResponse, error)
	listFn     func(ctx context.Context, userID string) ([]*domain.DocumentRecord, error)
	contentFn  func(ctx context.Context, userID, docID string) ([]byte, *domain.DocumentRecord, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*driving.UploadResponse, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) IngestExternal(ctx context.Context, req driving.ExternalRequest) (*driving.UploadResponse, error) {
	if m.externalFn != nil {
		return m.externalFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) List(ctx context.Context, userID string) ([]*domain.DocumentRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockDocumentService) Content(ctx context.Context, userID, docID string) ([]byte, *domain.DocumentRecord, error) {
	if m.contentFn != nil {
		return m.contentFn(ctx, userID, docID)
	}
	return nil, nil, domain.ErrNotFound
}

type mockRetrievalService struct {
	answerFn func(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error)
}

func (m *mockRetrievalService) Answer(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
	if m.answerFn != nil {
		return m.answerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

type mockDriveAuthService struct {
	connected  map[string]bool
	claimed    []string
	callbackFn func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error)
}

func (m *mockDriveAuthService) Connect(ctx context.Context) (*driving.ConnectResponse, error) {
	return &driving.ConnectResponse{
		AuthorizationURL: "https://accounts.example.com/auth?state=s1",
		State:            "s1",
		ExpiresAt:        time.Now().Add(10 * time.Minute),
	}, nil
}

func (m *mockDriveAuthService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if m.callbackFn != nil {
		return m.callbackFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDriveAuthService) Claim(ctx context.Context, tempKey, userID string) (*driving.ClaimResponse, error) {
	if !strings.HasPrefix(tempKey, "temp_") {
		return nil, domain.ErrNotFound
	}
	m.claimed = append(m.claimed, userID)
	return &driving.ClaimResponse{Connected: true, SyncStarted: true}, nil
}

func (m *mockDriveAuthService) Status(ctx context.Context, userID string) (*driving.DriveStatus, error) {
	return &driving.DriveStatus{Connected: m.connected[userID]}, nil
}

type mockSyncHandle struct {
	report *domain.SyncReport
	done   chan struct{}
}

func (h *mockSyncHandle) Cancel()                    {}
func (h *mockSyncHandle) Done() <-chan struct{}      { return h.done }
func (h *mockSyncHandle) Report() *domain.SyncReport { return h.report }

type mockDriveSyncService struct {
	started []string
	latest  map[string]*domain.SyncReport
}

func (m *mockDriveSyncService) SyncAll(ctx context.Context, userID string) driving.SyncHandle {
	m.started = append(m.started, userID)
	return &mockSyncHandle{
		report: &domain.SyncReport{UserID: userID, Status: domain.SyncStatusRunning, StartedAt: time.Now()},
		done:   make(chan struct{}),
	}
}

func (m *mockDriveSyncService) Latest(userID string) (*domain.SyncReport, bool) {
	r, ok := m.latest[userID]
	return r, ok
}

func (m *mockDriveSyncService) Shutdown(ctx context.Context) error { return nil }

type testServer struct {
	*Server
	docs      *mockDocumentService
	retrieval *mockRetrievalService
	driveAuth *mockDriveAuthService
	driveSync *mockDriveSyncService
}

func newTestServer(checks ...ReadinessCheck) *testServer {
	ts := &testServer{
		docs:      &mockDocumentService{},
		retrieval: &mockRetrievalService{},
		driveAuth: &mockDriveAuthService{connected: map[string]bool{}},
		driveSync: &mockDriveSyncService{latest: map[string]*domain.SyncReport{}},
	}
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	ts.Server = NewServer(cfg, Services{
		Documents: ts.docs,
		Retrieval: ts.retrieval,
		DriveAuth: ts.driveAuth,
		DriveSync: ts.driveSync,
		Verifier:  mocks.NewMockTokenVerifier(),
	}, checks...)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rr, req)
	return rr
}

func authed(req *http.Request, userID string) *http.Request {
	req.Header.Set("Authorization", "Bearer token-"+userID)
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

// Health endpoints

func TestHandleHealthAndVersion(t *testing.T) {
	ts := newTestServer()

	rr := ts.do(httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = ts.do(httptest.NewRequest("GET", "/version", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())
}

func TestHandleReady(t *testing.T) {
	ok := ReadinessCheck{Name: "database", Check: func(context.Context) error { return nil }}
	down := ReadinessCheck{Name: "vector_store", Check: func(context.Context) error { return domain.ErrVectorStoreUnavailable }}

	rr := newTestServer(ok).do(httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = newTestServer(ok, down).do(httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp ReadyResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "not ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Contains(t, resp.Checks["vector_store"], "vector store")
}

func TestHandleSwagger(t *testing.T) {
	rr := newTestServer().do(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/search")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/api/v1/search", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rr := newTestServer().do(req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

// Search

func TestHandleSearch(t *testing.T) {
	ts := newTestServer()
	var got domain.SearchRequest
	ts.retrieval.answerFn = func(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
		got = req
		return &domain.Answer{
			Text:    "Renewal is automatic.",
			Sources: []domain.SourceRef{{DocumentID: "doc-1", Page: 2, Excerpt: "renews", Score: 0.91}},
		}, nil
	}

	body := `{"query":"when does it renew?","docId":"doc-1","userId":"mallory"}`
	rr := ts.do(authed(httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(body)), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "alice", got.UserID, "user id comes from the token")
	assert.Equal(t, "doc-1", got.DocumentID)

	var answer domain.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&answer))
	assert.Equal(t, "Renewal is automatic.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, 2, answer.Sources[0].Page)
}

func TestHandleSearch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		auth       bool
		body       string
		err        error
		wantStatus int
	}{
		{"no token", false, `{"query":"x"}`, nil, http.StatusUnauthorized},
		{"bad body", true, `{`, nil, http.StatusBadRequest},
		{"empty query", true, `{"query":"  "}`, domain.ErrInvalidQuery, http.StatusBadRequest},
		{"llm down", true, `{"query":"x"}`, domain.ErrGenerationUnavailable, http.StatusBadGateway},
		{"unexpected", true, `{"query":"x"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.retrieval.answerFn = func(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
				return nil, tt.err
			}

			req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(tt.body))
			if tt.auth {
				authed(req, "alice")
			}
			rr := ts.do(req)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "search failed", decodeError(t, rr))
			}
		})
	}
}

// Documents

func TestHandleUpload(t *testing.T) {
	ts := newTestServer()
	var got driving.UploadRequest
	ts.docs.uploadFn = func(ctx context.Context, req driving.UploadRequest) (*driving.UploadResponse, error) {
		got = req
		return &driving.UploadResponse{DocumentID: "doc-1", Name: req.FileName, Words: 3, Chunks: 1}, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("three little words"))
	require.NoError(t, mw.WriteField("workspace", "research"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := ts.do(authed(req, "alice"))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "notes.txt", got.FileName)
	assert.Equal(t, "research", got.Workspace)
	assert.Equal(t, []byte("three little words"), got.Data)

	var resp driving.UploadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "doc-1", resp.DocumentID)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	ts := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("workspace", "research"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := ts.do(authed(req, "alice"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "file is required", decodeError(t, rr))
}

func TestHandleUpload_UnsupportedFormat(t *testing.T) {
	ts := newTestServer()
	ts.docs.uploadFn = func(ctx context.Context, req driving.UploadRequest) (*driving.UploadResponse, error) {
		return nil, domain.ErrUnsupportedFormat
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "image.png")
	_, _ = fw.Write([]byte{0x89, 0x50})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := ts.do(authed(req, "alice"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleIngestExternal(t *testing.T) {
	ts := newTestServer()
	var got driving.ExternalRequest
	ts.docs.externalFn = func(ctx context.Context, req driving.ExternalRequest) (*driving.UploadResponse, error) {
		got = req
		return &driving.UploadResponse{DocumentID: "doc-2", Name: "report.pdf"}, nil
	}

	body := `{"url":"https://example.com/report.pdf","name":"report.pdf"}`
	rr := ts.do(authed(httptest.NewRequest("POST", "/api/v1/documents/external", strings.NewReader(body)), "bob"))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "bob", got.UserID)
	assert.Equal(t, "https://example.com/report.pdf", got.URL)
}

func TestHandleListDocuments(t *testing.T) {
	ts := newTestServer()
	ts.docs.listFn = func(ctx context.Context, userID string) ([]*domain.DocumentRecord, error) {
		if userID != "alice" {
			return nil, nil
		}
		return []*domain.DocumentRecord{{ID: "doc-2"}, {ID: "doc-1"}}, nil
	}

	rr := ts.do(authed(httptest.NewRequest("GET", "/api/v1/documents", nil), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DocumentListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "doc-2", resp.Documents[0].ID)

	rr = ts.do(authed(httptest.NewRequest("GET", "/api/v1/documents", nil), "carol"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"documents":[],"total":0}`, rr.Body.String())
}

func TestHandleDocumentContent(t *testing.T) {
	ts := newTestServer()
	ts.docs.contentFn = func(ctx context.Context, userID, docID string) ([]byte, *domain.DocumentRecord, error) {
		if userID != "alice" || docID != "doc-1" {
			return nil, nil, domain.ErrNotFound
		}
		return []byte("%PDF-1.4"), &domain.DocumentRecord{ID: "doc-1", FileName: "report.pdf"}, nil
	}

	rr := ts.do(authed(httptest.NewRequest("GET", "/api/v1/documents/doc-1/content", nil), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=report.pdf`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rr.Body.String())

	rr = ts.do(authed(httptest.NewRequest("GET", "/api/v1/documents/doc-1/content", nil), "mallory"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// Drive

func TestHandleDriveConnect(t *testing.T) {
	ts := newTestServer()

	rr := ts.do(httptest.NewRequest("GET", "/api/v1/drive/connect", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(authed(httptest.NewRequest("GET", "/api/v1/drive/connect", nil), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp driving.ConnectResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "s1", resp.State)
}

func TestHandleDriveCallback(t *testing.T) {
	ts := newTestServer()
	ts.driveAuth.callbackFn = func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
		if req.State != "s1" || req.Code != "c1" {
			return nil, domain.ErrInvalidInput
		}
		return &driving.CallbackResponse{
			TempKey:     "temp_1",
			RedirectURL: "http://localhost:3000/dashboard?drive=connected&temp=temp_1",
		}, nil
	}

	rr := ts.do(httptest.NewRequest("GET", "/api/v1/drive/callback?state=s1&code=c1", nil))
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "http://localhost:3000/dashboard?drive=connected&temp=temp_1", rr.Header().Get("Location"))

	rr = ts.do(httptest.NewRequest("GET", "/api/v1/drive/callback?state=bogus&code=c1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDriveClaim(t *testing.T) {
	ts := newTestServer()

	rr := ts.do(authed(httptest.NewRequest("POST", "/api/v1/drive/claim", nil), "alice"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(authed(httptest.NewRequest("POST", "/api/v1/drive/claim?tempKey=unknown", nil), "alice"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(authed(httptest.NewRequest("POST", "/api/v1/drive/claim?tempKey=temp_1", nil), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"connected":true,"sync_started":true}`, rr.Body.String())
	assert.Equal(t, []string{"alice"}, ts.driveAuth.claimed)
}

func TestHandleDriveSync(t *testing.T) {
	ts := newTestServer()

	rr := ts.do(authed(httptest.NewRequest("POST", "/api/v1/drive/sync", nil), "alice"))
	assert.Equal(t, http.StatusNotFound, rr.Code, "no drive connected")
	assert.Empty(t, ts.driveSync.started)

	ts.driveAuth.connected["alice"] = true
	rr = ts.do(authed(httptest.NewRequest("POST", "/api/v1/drive/sync", nil), "alice"))
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, []string{"alice"}, ts.driveSync.started)

	rr = ts.do(authed(httptest.NewRequest("GET", "/api/v1/drive/sync", nil), "alice"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	ts.driveSync.latest["alice"] = &domain.SyncReport{UserID: "alice", Status: domain.SyncStatusCompleted, Listed: 3, Succeeded: 3}
	rr = ts.do(authed(httptest.NewRequest("GET", "/api/v1/drive/sync", nil), "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	var report domain.SyncReport
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.Equal(t, domain.SyncStatusCompleted, report.Status)
	assert.Equal(t, 3, report.Succeeded)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidQuery, http.StatusBadRequest},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrCredentialInvalid, http.StatusConflict},
		{domain.ErrDriveUnavailable, http.StatusBadGateway},
		{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{domain.ErrVectorStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDriveRoutes_NotConfigured(t *testing.T) {
	server := NewServer(DefaultConfig(), Services{
		Documents: &mockDocumentService{},
		Retrieval: &mockRetrievalService{},
		Verifier:  mocks.NewMockTokenVerifier(),
	})

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/drive/connect"},
		{"GET", "/api/v1/drive/status"},
		{"POST", "/api/v1/drive/sync"},
		{"GET", "/api/v1/drive/callback?state=s&code=c"},
	} {
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, authed(httptest.NewRequest(route.method, route.path, nil), "alice"))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "%s %s", route.method, route.path)
	}
}
