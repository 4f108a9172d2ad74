// Package server exposes the indicator comparison over HTTP, with one set
// of real 2024 values per browser session.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/internal/report"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/iwvelando/poverty-forecast/pkg/output"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Options tune the handler beyond its session store.
type Options struct {
	Version      string
	ReportTitle  string
	MaxBodyBytes int64
}

type handler struct {
	logger   *zap.Logger
	sessions *SessionStore
	opts     Options
}

// NewHandler constructs the HTTP handler that serves the report pages and
// the comparison API.
func NewHandler(logger *zap.Logger, sessions *SessionStore, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	opts.Version = strings.TrimSpace(opts.Version)
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.ReportTitle == "" {
		opts.ReportTitle = constants.DefaultReportTitle
	}

	h := &handler{logger: logger, sessions: sessions, opts: opts}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/api/version", h.handleVersion)
	router.HandlerFunc(http.MethodGet, "/api/indicators", h.handleIndicators)
	router.HandlerFunc(http.MethodGet, "/api/categories/:category", h.handleCategory)
	router.HandlerFunc(http.MethodGet, "/api/comparisons", h.handleComparisons)
	router.HandlerFunc(http.MethodGet, "/api/headline", h.handleHeadline)
	router.HandlerFunc(http.MethodGet, "/api/range/:indicator", h.handleRange)
	router.HandlerFunc(http.MethodPut, "/api/actuals/:indicator", h.handleRecordActual)
	router.HandlerFunc(http.MethodDelete, "/api/actuals/:indicator", h.handleClearActual)

	// Reports for the caller's session
	router.HandlerFunc(http.MethodGet, "/", h.reportHandler(constants.ReportFormatHTML))
	router.HandlerFunc(http.MethodGet, "/report.pdf", h.reportHandler(constants.ReportFormatPDF))
	router.HandlerFunc(http.MethodGet, "/report.xlsx", h.reportHandler(constants.ReportFormatXLSX))

	return h.logRequests(router)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("http request",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func sessionID(r *http.Request) string {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// withSession resolves the caller's session from the cookie, creating one
// when needed, runs fn on it and refreshes the cookie.
func (h *handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*indicators.Session) error) error {
	id, err := h.sessions.With(sessionID(r), fn)
	h.setSessionCookie(w, id)
	return err
}

// readSession runs fn on the caller's session without creating one. Callers
// with no live session see the dataset without real values.
func (h *handler) readSession(w http.ResponseWriter, r *http.Request, fn func(*indicators.Session) error) error {
	id := sessionID(r)
	stored, err := h.sessions.Existing(id, fn)
	if stored {
		h.setSessionCookie(w, id)
	}
	return err
}

func (h *handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessions.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) comparator(s *indicators.Session) *indicators.Comparator {
	return indicators.NewComparator(h.sessions.dataset, s)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.opts.Version,
	})
}

type indicatorsResponse struct {
	Categories []categoryInfo         `json:"categories"`
	Indicators []indicators.Indicator `json:"indicators"`
}

type categoryInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (h *handler) handleIndicators(w http.ResponseWriter, r *http.Request) {
	resp := indicatorsResponse{Indicators: h.sessions.dataset.Indicators()}
	for _, c := range indicators.Categories() {
		resp.Categories = append(resp.Categories, categoryInfo{Key: c.Key(), Label: c.String()})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type rowsResponse struct {
	Category string           `json:"category,omitempty"`
	Rows     []indicators.Row `json:"rows"`
	CSV      string           `json:"csv,omitempty"`
}

func (h *handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	key := httprouter.ParamsFromContext(r.Context()).ByName("category")
	category, err := indicators.ParseCategory(key)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error(), "server.handleCategory")
		return
	}

	var resp rowsResponse
	err = h.readSession(w, r, func(s *indicators.Session) error {
		resp = rowsResponse{Category: category.Key(), Rows: h.comparator(s).CategoryRows(category)}
		return nil
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleCategory")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleComparisons(w http.ResponseWriter, r *http.Request) {
	var rows []indicators.Row
	err := h.readSession(w, r, func(s *indicators.Session) error {
		rows = h.comparator(s).Rows()
		return nil
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleComparisons")
		return
	}

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, rows); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), "server.handleComparisons")
		return
	}
	h.writeJSON(w, http.StatusOK, rowsResponse{Rows: rows, CSV: buf.String()})
}

func (h *handler) handleHeadline(w http.ResponseWriter, r *http.Request) {
	var headline indicators.Headline
	err := h.readSession(w, r, func(s *indicators.Session) error {
		var err error
		headline, err = h.comparator(s).Headline()
		return err
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleHeadline")
		return
	}
	h.writeJSON(w, http.StatusOK, headline)
}

type rangeResponse struct {
	Indicator string  `json:"indicator"`
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Width     float64 `json:"width"`
	Label     string  `json:"label"`
}

func (h *handler) handleRange(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("indicator")
	ind, ok := h.sessions.dataset.Find(name)
	if !ok {
		h.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown indicator %q", name), "server.handleRange")
		return
	}
	rng, ok := indicators.ScenarioRange(ind)
	if !ok {
		h.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%q has no forecast values", ind.Name), "server.handleRange")
		return
	}
	h.writeJSON(w, http.StatusOK, rangeResponse{
		Indicator: ind.Name,
		Low:       rng.Low,
		High:      rng.High,
		Width:     rng.Width(),
		Label:     rng.String(),
	})
}

type actualRequest struct {
	Value *float64 `json:"value"`
}

func (h *handler) handleRecordActual(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRecordActual"
	name := httprouter.ParamsFromContext(r.Context()).ByName("indicator")

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	var req actualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.opts.MaxBodyBytes), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err), op)
		return
	}
	if req.Value == nil {
		h.respondError(w, http.StatusBadRequest, "missing value", op)
		return
	}

	var summary indicators.Summary
	err := h.withSession(w, r, func(s *indicators.Session) error {
		if err := s.RecordActual(name, *req.Value); err != nil {
			return err
		}
		var err error
		summary, err = h.comparator(s).Summarize(name)
		return err
	})
	if err != nil {
		h.respondError(w, inputStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleClearActual(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleClearActual"
	name := httprouter.ParamsFromContext(r.Context()).ByName("indicator")

	var summary indicators.Summary
	err := h.readSession(w, r, func(s *indicators.Session) error {
		s.ClearActual(name)
		var err error
		summary, err = h.comparator(s).Summarize(name)
		return err
	})
	if err != nil {
		h.respondError(w, inputStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// inputStatus maps indicator errors onto HTTP status codes.
func inputStatus(err error) int {
	switch {
	case errors.Is(err, indicators.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, indicators.ErrUnknownIndicator):
		return http.StatusNotFound
	case errors.Is(err, indicators.ErrMissingValue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) reportHandler(format string) http.HandlerFunc {
	op := "server.report." + format
	return func(w http.ResponseWriter, r *http.Request) {
		var rep report.Report
		err := h.readSession(w, r, func(s *indicators.Session) error {
			var err error
			rep, err = report.Build(h.comparator(s), h.opts.ReportTitle)
			return err
		})
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), op)
			return
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, format, rep); err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		w.Header().Set("Content-Type", report.ContentType(format))
		if format != constants.ReportFormatHTML {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(format)))
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			h.logger.Warn("failed to write report",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

// Run listens on cfg.Address and serves until ctx is cancelled, then shuts
// down gracefully. ready, when non-nil, receives the bound address.
func Run(ctx context.Context, cfg *Config, logger *zap.Logger, opts Options, ready chan<- string) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = cfg.MaxBodyBytes()
	}

	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	sessions := NewSessionStore(ctx, indicators.LoadDataset(), cfg.SessionTTLDuration(), cfg.SweepIntervalDuration(), logger)
	defer sessions.Close()

	srv := &http.Server{
		Handler:           NewHandler(logger, sessions, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting HTTP server",
		zap.String("op", "server.Run"),
		zap.String("address", listener.Addr().String()),
	)
	if ready != nil {
		ready <- listener.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server",
			zap.String("op", "server.Run"),
		)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
