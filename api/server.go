// Package api provides an HTTP surface for the importer: upload an AIB CSV
// export, get ledger entries back. It can be enabled via the CLI or used
// programmatically.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/yacoob/beancount-aib/importer"
	"github.com/yacoob/beancount-aib/ledger"
)

// Config holds the API server configuration.
type Config struct {
	Port string
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		Port: ":8080",
	}
}

// Server is the HTTP API server.
type Server struct {
	config Config
	logger *log.Logger
	mux    *http.ServeMux
}

// New creates an API server with the given configuration.
func New(cfg Config, logger *log.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server, allowing use with
// custom http.Server configurations.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info("starting server", "port", s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleExtract accepts a multipart CSV upload and responds with the
// imported entries, as JSON by default or as beancount text with
// format=text.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("received request", "remote", r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 32MB max memory; CSV exports are tiny.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.logger.Error("parsing multipart form", "error", err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		s.logger.Error("getting file from form", "error", err)
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := importer.ProcessReader(file, handler.Filename)
	if err != nil {
		s.logger.Error("importing upload", "file", handler.Filename, "error", err)
		http.Error(w, "Could not import file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if result == nil {
		http.Error(w, "Not an AIB export for a configured account", http.StatusUnprocessableEntity)
		return
	}

	format := coalesce(r.FormValue("format"), r.URL.Query().Get("format"))
	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := ledger.Render(w, result.Entries); err != nil {
			s.logger.Error("rendering entries", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
