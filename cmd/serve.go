package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandlens/brandlens-cli/internal/analytics"
	"github.com/brandlens/brandlens-cli/internal/checker"
	"github.com/brandlens/brandlens-cli/internal/model"
	"github.com/brandlens/brandlens-cli/internal/store"
)

var servePort int

// server bundles the dependencies behind the HTTP API.
type server struct {
	st  store.Store
	chk *checker.Checker
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/trackers", s.handleListTrackers)
		r.Post("/trackers", s.handleCreateTracker)
		r.Delete("/trackers/{id}", s.handleDeleteTracker)

		r.Get("/competitors", s.handleListCompetitors)
		r.Post("/competitors", s.handleCreateCompetitor)
		r.Delete("/competitors/{id}", s.handleDeleteCompetitor)

		r.Get("/records", s.handleListRecords)
		r.Post("/check", s.handleCheck)

		r.Get("/analytics/sources", s.handleSources)
		r.Get("/analytics/trend", s.handleTrend)
		r.Get("/analytics/visibility", s.handleVisibility)
		r.Get("/analytics/positions", s.handlePositions)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userParam reads the user scope from the query string, defaulting to the
// single-tenant local user.
func userParam(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "local"
}

func (s *server) handleListTrackers(w http.ResponseWriter, r *http.Request) {
	trackers, err := s.st.ListTrackers(r.Context(), userParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trackers)
}

func (s *server) handleCreateTracker(w http.ResponseWriter, r *http.Request) {
	var t model.Tracker
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Brand == "" || t.Query == "" {
		writeError(w, http.StatusBadRequest, "brand and query are required")
		return
	}
	if t.UserID == "" {
		t.UserID = userParam(r)
	}
	if t.Engine == "" {
		t.Engine = model.EngineOpenAI
	}

	created, err := s.st.CreateTracker(r.Context(), t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleDeleteTracker(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteTracker(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.st.ListCompetitors(r.Context(), userParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, competitors)
}

func (s *server) handleCreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var c model.Competitor
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" || c.Domain == "" {
		writeError(w, http.StatusBadRequest, "name and domain are required")
		return
	}
	if c.UserID == "" {
		c.UserID = userParam(r)
	}

	created, err := s.st.CreateCompetitor(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleDeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteCompetitor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordQuery builds a store filter from request query parameters.
func recordQuery(r *http.Request) store.RecordFilter {
	q := r.URL.Query()
	filter := store.RecordFilter{
		UserID:        userParam(r),
		TrackerID:     q.Get("tracker"),
		MentionedOnly: q.Get("mentioned") == "true",
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = n
	}
	if days, err := strconv.Atoi(q.Get("since_days")); err == nil && days > 0 {
		since := time.Now().AddDate(0, 0, -days)
		filter.Since = &since
	}
	return filter
}

func (s *server) listRecords(r *http.Request) ([]model.SearchRecord, error) {
	return s.st.ListRecords(r.Context(), recordQuery(r))
}

func (s *server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.listRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []model.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID := userParam(r)
	trackers, err := s.st.ListTrackers(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(trackers) == 0 {
		writeError(w, http.StatusNotFound, "no trackers configured")
		return
	}

	// Run the check asynchronously; poll /api/records for results.
	// Detach from the request context so the run survives the response.
	go func() {
		summary, err := s.chk.Run(context.Background(), trackers)
		if err != nil {
			zap.L().Error("api check run failed", zap.String("user", userID), zap.Error(err))
			return
		}
		zap.L().Info("api check run complete",
			zap.String("user", userID),
			zap.Int("checked", summary.Checked),
			zap.Int("mentioned", summary.Mentioned),
			zap.Int("failed", summary.Failed),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "accepted",
		"trackers": len(trackers),
	})
}

func (s *server) handleSources(w http.ResponseWriter, r *http.Request) {
	records, err := s.listRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		limit = n
	}
	stats := analytics.TopSources(records, limit)
	if stats == nil {
		stats = []model.DomainStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleTrend(w http.ResponseWriter, r *http.Request) {
	records, err := s.listRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics.WeeklyTrend(records, time.Now()))
}

func (s *server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.st.ListCompetitors(r.Context(), userParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records, err := s.listRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics := analytics.CompetitorVisibility(records, competitors)
	if metrics == nil {
		metrics = []model.CompetitorMetric{}
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *server) handlePositions(w http.ResponseWriter, r *http.Request) {
	records, err := s.listRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics.MentionPositions(records))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		chk, err := initChecker(st)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(&server{st: st, chk: chk}),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
