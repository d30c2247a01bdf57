// Package api exposes ingestion and reporting over HTTP. Mail providers post
// raw inbound emails to /mail/inbound, and a scheduler hits /send_mail.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/ingest"
	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/report"
	"github.com/bmritz/grocerymail/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies at 32MB
var maxBodyBytes int64 = 32 << 20

// Config holds the API server configuration
type Config struct {
	Port string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port: ":8080",
	}
}

// Server represents the HTTP API server
type Server struct {
	config   Config
	mux      *http.ServeMux
	ingester *ingest.Ingester
	reports  *report.Service
	log      zerolog.Logger
}

// New creates a new API server with the given configuration
func New(cfg Config, ingester *ingest.Ingester, reports *report.Service, log zerolog.Logger) *Server {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		ingester: ingester,
		reports:  reports,
		log:      log,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/mail/inbound", s.handleInbound)
	s.mux.HandleFunc("/report", s.handleReport)
	s.mux.HandleFunc("/send_mail", s.handleSendMail)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.withRequestLogger(s.mux)
}

// Start starts the HTTP server and shuts it down when ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.config.Port).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withRequestLogger tags every request with an id and puts a logger carrying
// it into the request context
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		log := s.log.With().Str("request_id", requestID).Str("path", r.URL.Path).Logger()
		log.Debug().Str("method", r.Method).Str("remote", r.RemoteAddr).Msg("request")
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract parses an alert body without storing anything. The body is
// either plain text or a raw email when the raw query flag is set.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := parseExtractOptions(r)
	sender, body, err := readMessage(w, r, opts.Raw)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("could not read message")
		http.Error(w, "Could not read message: "+err.Error(), bodyErrorStatus(err))
		return
	}

	result := extractor.Process(extractor.NewMessage(sender, body, time.Now()))
	writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(result, opts.TransactionOnly, opts.MessageOnly))
}

// handleInbound stores a raw inbound email and its transactions
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.ingester.Raw(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("inbound mail rejected")
		http.Error(w, "Could not ingest message: "+err.Error(), bodyErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleReport returns the month to date summary without sending it
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	summary, err := s.reports.Build(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("report failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleSendMail builds the summary and mails it to the configured user
func (s *Server) handleSendMail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	summary, err := s.reports.Send(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("send_mail failed")
		status := http.StatusInternalServerError
		if errors.Is(err, mail.ErrInvalidAddress) || errors.Is(err, store.ErrSettingNotFound) {
			// Operator configuration problem, not a transient failure.
			status = http.StatusFailedDependency
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	MessageOnly     bool
	TransactionOnly bool
	Raw             bool
	Sender          string
}

// parseExtractOptions extracts options from the HTTP request
func parseExtractOptions(r *http.Request) ExtractOptions {
	q := r.URL.Query()
	return ExtractOptions{
		MessageOnly:     q.Get("message_only") == "true",
		TransactionOnly: q.Get("transaction_only") == "true",
		Raw:             q.Get("raw") == "true",
		Sender:          coalesce(q.Get("sender"), r.Header.Get("X-Sender")),
	}
}

func readMessage(w http.ResponseWriter, r *http.Request, raw bool) (string, string, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if raw {
		in, err := mail.ParseInbound(body)
		if err != nil {
			return "", "", err
		}
		return in.Sender, in.Text, nil
	}
	text, err := io.ReadAll(body)
	if err != nil {
		return "", "", err
	}
	if len(text) == 0 {
		return "", "", errors.New("empty body")
	}
	return parseExtractOptions(r).Sender, string(text), nil
}

// bodyErrorStatus maps a request body error to 413 when the body was too large
func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
