package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chromabiz/palette-api/internal/httputil"
)

const headerRequestID = "X-Request-ID"

// Router assembles the full route tree, including the shared middleware
// stack. The quota gate is not middleware: charge timing is decided per
// handler, next to the upstream call it pays for.
func (h *Handler) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteNotFoundError(w, w.Header().Get(headerRequestID), "Not found")
	})

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)
		r.Post("/generate-palettes", h.GeneratePalettes)
		r.Post("/chat", h.Chat)
		r.Get("/rate-limit", h.RateLimit)
		r.Post("/status", h.CreateStatus)
		r.Get("/status", h.ListStatus)
	})

	return r
}

// clientIdentifier is the quota partition key: the client's network
// address with the port stripped. RealIP has already folded proxy headers
// into RemoteAddr. Clients behind shared NAT share an allowance; that is
// an accepted limitation, not a security boundary.
func clientIdentifier(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerRequestID)
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set(headerRequestID, reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
