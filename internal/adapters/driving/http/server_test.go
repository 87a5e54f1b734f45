package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/docquery-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

type stubRunService struct {
	result  *domain.RunResult
	err     error
	lastReq domain.RunRequest
}

func (s *stubRunService) Run(_ context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubStatusReporter struct {
	statuses []domain.ProviderStatus
}

func (s *stubStatusReporter) Status() []domain.ProviderStatus { return s.statuses }

type stubIndexInfo struct {
	size int
	hash string
}

func (s *stubIndexInfo) Size() int            { return s.size }
func (s *stubIndexInfo) DocumentHash() string { return s.hash }

func newTestServer(apiToken string, runService *stubRunService) *Server {
	return NewServer(Config{
		Host:     "127.0.0.1",
		Port:     0,
		Version:  "test",
		APIToken: apiToken,
	},
		runService,
		auth.NewAdapter("test-jwt-secret"),
		&stubStatusReporter{statuses: []domain.ProviderStatus{
			{Name: "gemini_1", Kind: "gemini"},
		}},
		&stubIndexInfo{size: 3, hash: "abc123"},
	)
}

func doRequest(s *Server, method, path, bearer string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer("", &stubRunService{})

	rec := doRequest(s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if len(resp.Providers) != 1 || resp.Providers[0].Name != "gemini_1" {
		t.Errorf("providers = %+v", resp.Providers)
	}
	if resp.IndexSize != 3 || resp.IndexDocument != "abc123" {
		t.Errorf("index = (%d, %q), want (3, abc123)", resp.IndexSize, resp.IndexDocument)
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer("", &stubRunService{})

	rec := doRequest(s, http.MethodGet, "/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["version"] != "test" {
		t.Errorf("version = %q, want test", resp["version"])
	}
}

func TestRunRequiresAuth(t *testing.T) {
	s := newTestServer("secret-token", &stubRunService{})

	body, _ := json.Marshal(domain.RunRequest{Documents: "https://example.com/d.pdf", Questions: []string{"q"}})
	rec := doRequest(s, http.MethodPost, "/api/v1/run", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/run", "wrong-token", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bad token", rec.Code)
	}
}

func TestRunWithStaticToken(t *testing.T) {
	run := &stubRunService{result: &domain.RunResult{Answers: []string{"thirty days"}}}
	s := newTestServer("secret-token", run)

	body, _ := json.Marshal(domain.RunRequest{Documents: "https://example.com/d.pdf", Questions: []string{"q"}})
	rec := doRequest(s, http.MethodPost, "/api/v1/run", "secret-token", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp domain.RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Answers) != 1 || resp.Answers[0] != "thirty days" {
		t.Errorf("answers = %v", resp.Answers)
	}
	if run.lastReq.Documents != "https://example.com/d.pdf" {
		t.Errorf("run service received %q", run.lastReq.Documents)
	}
}

func TestRunWithExchangedJWT(t *testing.T) {
	run := &stubRunService{result: &domain.RunResult{Answers: []string{"ok"}}}
	s := newTestServer("secret-token", run)

	// Exchange the static credential for a JWT.
	body, _ := json.Marshal(TokenRequest{APIToken: "secret-token"})
	rec := doRequest(s, http.MethodPost, "/api/v1/auth/token", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("token exchange status = %d: %s", rec.Code, rec.Body.String())
	}
	var tokenResp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if tokenResp.TokenType != "Bearer" || tokenResp.Token == "" {
		t.Fatalf("token response = %+v", tokenResp)
	}

	// Use the JWT on the protected endpoint.
	runBody, _ := json.Marshal(domain.RunRequest{Documents: "https://example.com/d.pdf", Questions: []string{"q"}})
	rec = doRequest(s, http.MethodPost, "/api/v1/run", tokenResp.Token, runBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("run with JWT status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTokenExchangeRejectsBadCredential(t *testing.T) {
	s := newTestServer("secret-token", &stubRunService{})

	body, _ := json.Marshal(TokenRequest{APIToken: "wrong"})
	rec := doRequest(s, http.MethodPost, "/api/v1/auth/token", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTokenExchangeDisabledWithoutAPIToken(t *testing.T) {
	s := newTestServer("", &stubRunService{})

	body, _ := json.Marshal(TokenRequest{APIToken: "anything"})
	rec := doRequest(s, http.MethodPost, "/api/v1/auth/token", "", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOpenModeWithoutAPIToken(t *testing.T) {
	run := &stubRunService{result: &domain.RunResult{Answers: []string{"ok"}}}
	s := newTestServer("", run)

	body, _ := json.Marshal(domain.RunRequest{Documents: "https://example.com/d.pdf", Questions: []string{"q"}})
	rec := doRequest(s, http.MethodPost, "/api/v1/run", "", body)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 in open mode", rec.Code)
	}
}

func TestRunInvalidBody(t *testing.T) {
	s := newTestServer("", &stubRunService{})

	rec := doRequest(s, http.MethodPost, "/api/v1/run", "", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRunServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer("", &stubRunService{err: tt.err})

			body, _ := json.Marshal(domain.RunRequest{Documents: "https://example.com/d.pdf", Questions: []string{"q"}})
			rec := doRequest(s, http.MethodPost, "/api/v1/run", "", body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestProvidersEndpoint(t *testing.T) {
	s := newTestServer("secret-token", &stubRunService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/providers", "secret-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var statuses []domain.ProviderStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Name != "gemini_1" {
		t.Errorf("statuses = %+v", statuses)
	}
}
