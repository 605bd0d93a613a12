// Package server provides the HTTP REST API for the email agent.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/ingest"
	"github.com/yatharthk2/EmailDemo-sub001/internal/jobs"
	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/server/ratelimit"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Store is the read surface handlers need from the database. *db.DB
// implements it; tests substitute in-memory fakes.
type Store interface {
	LatestView(ctx context.Context, emailID, filename string) (*types.ProcessedFileView, error)
	ListViews(ctx context.Context, limit int) ([]types.ProcessedFileView, error)
	StageLogHistory(ctx context.Context, emailID, filename string) ([]types.StageLog, error)
	ListStageLogs(ctx context.Context, opts db.ListStageLogsOptions) ([]types.StageLog, int, error)
	ListReceipts(ctx context.Context, opts db.ListReceiptsOptions) ([]types.ReceiptRecord, error)
}

// Processor runs document batches through the stage pipeline.
type Processor interface {
	ProcessBatch(ctx context.Context, jobs []types.DocumentJob, opts pipeline.Options) (*pipeline.BatchSummary, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	engine      Processor
	source      ingest.Source
	matching    reconcile.Config
	rateLimiter *ratelimit.Limiter
	sweeper     *jobs.Sweeper
	db          *db.DB
	capability  capability.Client
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
	InboxDir    string
	Workers     int
	Capability  *capability.Config
	Matching    reconcile.Config
	// Sweep enables the periodic inbox sweep when set
	Sweep *jobs.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	// Connect to database
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	capCfg := cfg.Capability
	if capCfg == nil {
		capCfg = capability.DefaultConfig()
	}
	client, err := capability.NewClient(ctx, capCfg, cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create capability client: %w", err)
	}

	matching := cfg.Matching
	if matching.DateToleranceDays == 0 && matching.AmountEpsilon.IsZero() {
		matching = *reconcile.DefaultConfig()
	}
	if err := matching.Validate(); err != nil {
		database.Close()
		_ = client.Close()
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}

	s := &Server{
		store:      database,
		engine:     pipeline.NewEngine(client, database, cfg.Workers),
		source:     ingest.NewDirSource(cfg.InboxDir),
		matching:   matching,
		db:         database,
		capability: client,
	}
	if cfg.Sweep != nil {
		s.sweeper = jobs.NewSweeper(s.engine, s.source, *cfg.Sweep)
	}

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Setup router
	mux := s.routes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for batch processing and reconcile uploads
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request mux
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Document processing views and audit trail
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{email_id}/{filename}", s.handleGetDocument)
	mux.HandleFunc("GET /documents/{email_id}/{filename}/logs", s.handleDocumentLogs)
	mux.HandleFunc("GET /stage-logs", s.handleListStageLogs)
	mux.HandleFunc("POST /documents/process", s.handleProcessDocuments)

	// Receipts and reconciliation
	mux.HandleFunc("GET /receipts", s.handleListReceipts)
	mux.HandleFunc("POST /reconcile", s.handleReconcile)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if s.sweeper != nil {
		if err := s.sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start inbox sweep: %w", err)
		}
	}

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.capability != nil {
		_ = s.capability.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			// Set rate limit headers
			s.setRateLimitHeaders(w, info)
			// Return 429 Too Many Requests
			s.rateLimitResponse(w, info)
			return
		}

		// Set rate limit headers for successful requests
		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	// Log rate limit hit
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
