package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adrata/crm-ops/internal/checkpoint"
	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve read-only run status over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newStatusRouter(st, cfg.Checkpoint.Path),
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

// queueLister is the slice of the store the status endpoints read.
type queueLister interface {
	ListLeads(ctx context.Context) ([]model.Lead, error)
}

func newStatusRouter(st queueLister, checkpointPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/checkpoint", func(w http.ResponseWriter, req *http.Request) {
		state := checkpoint.Load(checkpointPath).State()
		writeJSON(w, http.StatusOK, state)
	})

	r.Get("/api/queue", func(w http.ResponseWriter, req *http.Request) {
		leads, err := st.ListLeads(req.Context())
		if err != nil {
			zap.L().Error("listing queue failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "queue unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, leads)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var _ queueLister = (*store.Postgres)(nil)
