package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chromabiz/palette-api/internal/httputil"
	"github.com/chromabiz/palette-api/internal/palette"
)

func TestClient_GeneratePalettes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-palettes" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var profile palette.BusinessProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			t.Fatalf("decode profile: %v", err)
		}
		if profile.BusinessName != "Acme" {
			t.Errorf("business name = %q, want Acme", profile.BusinessName)
		}
		p := palette.New("Warm", "warm and friendly", "comfort and appetite", []palette.Color{
			{Hex: "#D2691E", Name: "Cinnamon", Usage: "Primary"},
		})
		httputil.WriteJSON(w, http.StatusOK, palette.GenerateResponse{
			Palettes:             []palette.Palette{p},
			RemainingGenerations: 0,
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).GeneratePalettes(context.Background(), palette.BusinessProfile{
		BusinessName:     "Acme",
		BusinessCategory: "Technology",
	})
	if err != nil {
		t.Fatalf("GeneratePalettes: %v", err)
	}
	if len(resp.Palettes) != 1 || resp.Palettes[0].Name != "Warm" {
		t.Fatalf("unexpected palettes %+v", resp.Palettes)
	}
	if resp.RemainingGenerations != 0 {
		t.Errorf("remaining generations = %d, want 0", resp.RemainingGenerations)
	}
}

func TestClient_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteQuotaExceededError(w, "req_test", "Daily generation limit reached. Please try again tomorrow.")
	}))
	defer srv.Close()

	_, err := New(srv.URL).GeneratePalettes(context.Background(), palette.BusinessProfile{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if !apiErr.QuotaExceeded() {
		t.Errorf("QuotaExceeded() = false for status %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "Daily generation limit reached. Please try again tomorrow." {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestClient_ValidationFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteValidationError(w, "req_test", map[string]string{"business_name": "required"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GeneratePalettes(context.Background(), palette.BusinessProfile{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Fields["business_name"] != "required" {
		t.Errorf("fields = %v, want business_name: required", apiErr.Fields)
	}
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rate-limit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		httputil.WriteJSON(w, http.StatusOK, palette.RateLimitStatus{
			GenerationsRemaining: 1,
			RevisionsRemaining:   2,
			ResetTime:            "2026-01-02T00:00:00Z",
		})
	}))
	defer srv.Close()

	status, err := New(srv.URL).RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	if status.RevisionsRemaining != 2 {
		t.Errorf("revisions remaining = %d, want 2", status.RevisionsRemaining)
	}
}
