// Package server exposes the read-mostly HTTP API: latest signals, portfolio
// management, an on-demand guardian check, and Prometheus metrics.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"VolumeSniper/internal/analyzer"
	"VolumeSniper/internal/metrics"
	"VolumeSniper/internal/model"
	"VolumeSniper/internal/store"
)

// Server wires the HTTP API to the stores and the analyzer.
type Server struct {
	Analyzer  *analyzer.Analyzer
	Signals   store.SignalStore
	Positions store.PositionStore
	router    *mux.Router
	started   time.Time
}

// New builds the server and its routes.
func New(a *analyzer.Analyzer, signals store.SignalStore, positions store.PositionStore) *Server {
	s := &Server{
		Analyzer:  a,
		Signals:   signals,
		Positions: positions,
		router:    mux.NewRouter(),
		started:   time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/signals", s.handleSignals).Methods(http.MethodGet)
	api.HandleFunc("/positions", s.handleListPositions).Methods(http.MethodGet)
	api.HandleFunc("/positions", s.handleAddPosition).Methods(http.MethodPost)
	api.HandleFunc("/positions/check", s.handleCheckPositions).Methods(http.MethodGet)
	api.HandleFunc("/positions/{ticker}", s.handleGetPosition).Methods(http.MethodGet)
	api.HandleFunc("/positions/{ticker}", s.handleRemovePosition).Methods(http.MethodDelete)
	api.Use(s.logMiddleware)
}

// Handler returns the root handler for http.Server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("http server listening")
	return srv.ListenAndServe()
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("took", time.Since(start)).Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	scores, err := s.Signals.Signals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if scores == nil {
		scores = []model.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.Positions.Positions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if positions == nil {
		positions = []model.Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.Positions.Position(mux.Vars(r)["ticker"])
	if errors.Is(err, store.ErrPositionNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

type addPositionRequest struct {
	Ticker       string  `json:"ticker"`
	BuyPrice     float64 `json:"buy_price"`
	Quantity     int64   `json:"quantity"`
	PurchaseDate string  `json:"purchase_date"`
	Notes        string  `json:"notes"`
}

func (s *Server) handleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req addPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	purchased := time.Now()
	if req.PurchaseDate != "" {
		var err error
		purchased, err = time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	pos := model.Position{
		Ticker:       req.Ticker,
		BuyPrice:     req.BuyPrice,
		Quantity:     req.Quantity,
		PurchaseDate: purchased,
		Notes:        req.Notes,
	}
	err := s.Positions.AddPosition(pos)
	switch {
	case errors.Is(err, model.ErrInvalidPosition):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrPositionExists):
		writeError(w, http.StatusConflict, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusCreated, pos)
	}
}

func (s *Server) handleRemovePosition(w http.ResponseWriter, r *http.Request) {
	err := s.Positions.RemovePosition(mux.Vars(r)["ticker"])
	if errors.Is(err, store.ErrPositionNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckPositions(w http.ResponseWriter, r *http.Request) {
	results, err := s.Analyzer.EvaluatePositions(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
