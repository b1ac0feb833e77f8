package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/middleware"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

// Server exposes the accumulated reading history over HTTP: JSON endpoints
// for polling clients plus a minimal HTML view.
type Server struct {
	reader     *Reader
	httpServer *http.Server
}

// ServerConfig holds dashboard server configuration.
type ServerConfig struct {
	Reader *Reader
	Addr   string
}

// NewServer wires routes, CORS, and middleware.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{reader: cfg.Reader}

	router := mux.NewRouter()
	router.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/summary", s.summaryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/readings", s.readingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := middleware.Chain(
		c.Handler(router),
		middleware.Recovery,
		middleware.Logging,
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("dashboard")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("dashboard server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// prefixFor maps the source query parameter onto a key namespace. The
// lineage is always chosen explicitly; polled/simulated data is the default.
func prefixFor(r *http.Request) string {
	if r.URL.Query().Get("source") == "relayed" {
		return string(store.NamespaceRelayed)
	}
	return string(store.NamespacePolled)
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reader.Summarize(r.Context(), prefixFor(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("summary failed: %v", err), http.StatusBadGateway)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) readingsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reader.Rows(r.Context(), prefixFor(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("readings failed: %v", err), http.StatusBadGateway)
		return
	}
	writeJSON(w, struct {
		Thresholds map[string]float64 `json:"thresholds"`
		Rows       []Row              `json:"rows"`
	}{
		Thresholds: map[string]float64{
			"freezing_point":    freezingPoint,
			"drought_threshold": droughtThreshold,
		},
		Rows: rows,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
