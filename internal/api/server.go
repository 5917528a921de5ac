package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvkrepak/coingecko-crud/internal/service"
)

// Pinger reports connectivity of the directory cache backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	pool       *pgxpool.Pool
	cache      Pinger
	service    *service.CryptoService
	httpServer *http.Server
}

// NewServer wires the REST surface plus any extra handlers (the
// dashboard registers itself through extra).
func NewServer(pool *pgxpool.Pool, cache Pinger, svc *service.CryptoService, port int, corsOrigin string, extra ...func(*http.ServeMux)) *Server {
	s := &Server{
		pool:    pool,
		cache:   cache,
		service: svc,
	}

	mux := http.NewServeMux()

	// Tracked-coin routes
	mux.HandleFunc("GET /cryptos/{$}", s.handleListCryptos)
	mux.HandleFunc("POST /cryptos/{$}", s.handleCreateCrypto)
	mux.HandleFunc("POST /cryptos/update-prices/{$}", s.handleUpdatePrices)
	mux.HandleFunc("GET /cryptos/{cg_id}", s.handleGetCrypto)
	mux.HandleFunc("PUT /cryptos/{cg_id}", s.handleUpdateCrypto)
	mux.HandleFunc("DELETE /cryptos/{cg_id}", s.handleDeleteCrypto)

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	for _, register := range extra {
		register(mux)
	}

	handler := corsMiddleware(mux, corsOrigin)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the composed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// --- middleware ---

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
