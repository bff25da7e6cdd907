package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r := buildRouter(st, runReconciliation)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter assembles the dashboard API. The reconciliation runner is
// injected so handler tests don't need live catalog credentials.
func buildRouter(st store.Store, reconcile reconcileFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Latest persisted report.
	r.Get("/api/report", func(w http.ResponseWriter, req *http.Request) {
		report, err := st.LatestReport(req.Context())
		if err != nil {
			zap.L().Error("serve: load latest report", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load report"})
			return
		}
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report yet"})
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	// Run a reconciliation now and persist it.
	r.Post("/api/reconcile", func(w http.ResponseWriter, req *http.Request) {
		report := reconcile(req.Context())
		id, err := st.SaveReport(req.Context(), report)
		if err != nil {
			zap.L().Error("serve: persist report", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to persist report"})
			return
		}
		zap.L().Info("serve: reconciliation complete",
			zap.String("report_id", id),
			zap.Int("mismatches", report.Summary.MismatchRows),
		)
		writeJSON(w, http.StatusOK, report)
	})

	// Persisted run history.
	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), 50)
		if err != nil {
			zap.L().Error("serve: list runs", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
			return
		}
		if runs == nil {
			runs = []store.RunRecord{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

type reconcileFunc func(ctx context.Context) *model.Report

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
