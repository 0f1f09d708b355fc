package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromabiz/palette-api/internal/ai"
	"github.com/chromabiz/palette-api/internal/palette"
	"github.com/chromabiz/palette-api/internal/quota"
)

type fakeAI struct {
	palettes    []palette.Palette
	genErr      error
	answer      string
	refineErr   error
	lastMessage string
}

func (f *fakeAI) GeneratePalettes(_ context.Context, _ palette.BusinessProfile) ([]palette.Palette, error) {
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.palettes, nil
}

func (f *fakeAI) Refine(_ context.Context, message string, _ palette.ChatContext) (string, error) {
	f.lastMessage = message
	if f.refineErr != nil {
		return "", f.refineErr
	}
	return f.answer, nil
}

func newTestRouter(aiClient ai.Client) http.Handler {
	h := NewHandler(quota.NewMemoryStore(), aiClient, nil, nil, "test")
	return h.Router([]string{"*"})
}

func acmeProfile() []byte {
	return []byte(`{
		"business_name": "Acme",
		"business_category": "Technology",
		"target_country": "United States",
		"age_groups": ["26-35"],
		"target_gender": "All"
	}`)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body []byte, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGeneratePalettes_SuccessThenQuotaExceeded(t *testing.T) {
	fake := &fakeAI{palettes: []palette.Palette{palette.New("Test", "d", "p", nil)}}
	router := newTestRouter(fake)

	rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "10.0.0.1:5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp palette.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.RemainingGenerations != 0 {
		t.Errorf("expected remaining_generations=0, got %d", resp.RemainingGenerations)
	}
	if len(resp.Palettes) != 1 || resp.Palettes[0].Name != "Test" {
		t.Errorf("unexpected palettes: %+v", resp.Palettes)
	}

	// Same client, same day: hard 429.
	rec = doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "10.0.0.1:5000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second generation, got %d", rec.Code)
	}
}

func TestGeneratePalettes_IdentifiersIndependent(t *testing.T) {
	fake := &fakeAI{palettes: []palette.Palette{palette.New("Test", "", "", nil)}}
	router := newTestRouter(fake)

	if rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Fatalf("second client: expected 200, got %d", rec.Code)
	}
}

func TestGeneratePalettes_ValidationError(t *testing.T) {
	router := newTestRouter(&fakeAI{})

	rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", []byte(`{"business_name":"Acme"}`), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body.Fields["business_category"]; !ok {
		t.Errorf("expected business_category in field errors, got %v", body.Fields)
	}
	// Validation failures must not consume quota.
	rec = doJSON(t, router, http.MethodGet, "/api/rate-limit", nil, "")
	var status palette.RateLimitStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.GenerationsRemaining != quota.GenerationLimit {
		t.Errorf("validation error consumed quota: %+v", status)
	}
}

func TestGeneratePalettes_FallbackWhenUnconfigured(t *testing.T) {
	router := newTestRouter(nil)

	rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unconfigured upstream must not fail generation, got %d", rec.Code)
	}

	var resp palette.GenerateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Palettes) != 1 || resp.Palettes[0].Name != "Digital Trust" {
		t.Errorf("expected Technology fallback set, got %+v", resp.Palettes)
	}
}

func TestGeneratePalettes_FallbackOnUpstreamError(t *testing.T) {
	fake := &fakeAI{genErr: errors.New("model unavailable")}
	router := newTestRouter(fake)

	rec := doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("upstream failure must not fail generation, got %d", rec.Code)
	}

	var resp palette.GenerateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Palettes) == 0 {
		t.Error("expected fallback palettes")
	}
	if resp.RemainingGenerations != 0 {
		t.Errorf("failed upstream call still spends the slot, got remaining=%d", resp.RemainingGenerations)
	}
}

func TestChat_DecrementsRevisions(t *testing.T) {
	fake := &fakeAI{answer: "Try #1890FF for the primary."}
	router := newTestRouter(fake)

	body := []byte(`{"message":"make it bluer","context":{},"session_id":"s-1"}`)
	for want := quota.RevisionLimit - 1; want >= 0; want-- {
		rec := doJSON(t, router, http.MethodPost, "/api/chat", body, "10.0.0.9:1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp palette.ChatResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.RemainingRevisions != want {
			t.Errorf("expected remaining_revisions=%d, got %d", want, resp.RemainingRevisions)
		}
		if resp.Response != fake.answer {
			t.Errorf("unexpected answer: %q", resp.Response)
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/api/chat", body, "10.0.0.9:1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d revisions, got %d", quota.RevisionLimit, rec.Code)
	}
}

func TestChat_ApologyOnUpstreamError(t *testing.T) {
	fake := &fakeAI{refineErr: errors.New("model unavailable")}
	router := newTestRouter(fake)

	body := []byte(`{"message":"help","context":{},"session_id":"s-1"}`)
	rec := doJSON(t, router, http.MethodPost, "/api/chat", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("upstream failure in chat must answer 200, got %d", rec.Code)
	}

	var resp palette.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Response != ai.Apology {
		t.Errorf("expected apology, got %q", resp.Response)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	router := newTestRouter(&fakeAI{})
	rec := doJSON(t, router, http.MethodPost, "/api/chat", []byte(`{"message":""}`), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", rec.Code)
	}
}

func TestRateLimit_ReflectsConsumption(t *testing.T) {
	fake := &fakeAI{palettes: []palette.Palette{palette.New("Test", "", "", nil)}, answer: "ok"}
	router := newTestRouter(fake)

	rec := doJSON(t, router, http.MethodGet, "/api/rate-limit", nil, "10.1.1.1:2")
	var status palette.RateLimitStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.GenerationsRemaining != quota.GenerationLimit || status.RevisionsRemaining != quota.RevisionLimit {
		t.Fatalf("fresh client should see full limits, got %+v", status)
	}
	if _, err := time.Parse(time.RFC3339, status.ResetTime); err != nil {
		t.Errorf("reset_time not RFC3339: %q", status.ResetTime)
	}

	doJSON(t, router, http.MethodPost, "/api/generate-palettes", acmeProfile(), "10.1.1.1:2")
	doJSON(t, router, http.MethodPost, "/api/chat", []byte(`{"message":"hi"}`), "10.1.1.1:2")

	rec = doJSON(t, router, http.MethodGet, "/api/rate-limit", nil, "10.1.1.1:2")
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.GenerationsRemaining != 0 {
		t.Errorf("expected 0 generations remaining, got %d", status.GenerationsRemaining)
	}
	if status.RevisionsRemaining != quota.RevisionLimit-1 {
		t.Errorf("expected %d revisions remaining, got %d", quota.RevisionLimit-1, status.RevisionsRemaining)
	}
}

func TestRoot(t *testing.T) {
	router := newTestRouter(nil)
	rec := doJSON(t, router, http.MethodGet, "/api/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] == "" {
		t.Error("expected service banner")
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(nil)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("expected request id header on responses")
	}
}

func TestStatus_DatabaseUnavailable(t *testing.T) {
	router := newTestRouter(nil)

	rec := doJSON(t, router, http.MethodPost, "/api/status", []byte(`{"client_name":"probe"}`), "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("POST /api/status without a database: expected 500, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/status", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("GET /api/status without a database: expected 500, got %d", rec.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(nil)
	rec := doJSON(t, router, http.MethodGet, "/api/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Detail == "" {
		t.Error("expected JSON error envelope on 404")
	}
}

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"10.0.0.1:12345", "10.0.0.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"10.0.0.1", "10.0.0.1"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIdentifier(req); got != tt.want {
			t.Errorf("clientIdentifier(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
