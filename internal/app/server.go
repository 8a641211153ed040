package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/radgo/internal/format"
)

// Handler serves health, metrics and the latest outcome of every request.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /reports", a.listReports)
	mux.HandleFunc("GET /reports/{name}", a.getReport)
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) listReports(w http.ResponseWriter, r *http.Request) {
	outcomes, err := a.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	docs := make([]*format.OutcomeDoc, len(outcomes))
	for i, o := range outcomes {
		docs[i] = format.NewOutcomeDoc(o)
	}
	a.writeJSON(w, docs)
}

func (a *App) getReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	o, ok, err := a.store.Get(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, fmt.Sprintf("no outcome for request %q", name), http.StatusNotFound)
		return
	}
	a.writeJSON(w, format.NewOutcomeDoc(o))
}

func (a *App) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := format.JSON(w, v); err != nil {
		a.logger.Error("Failed to write response.", "error", err)
	}
}

// startServer runs the HTTP server in the background. The returned
// function shuts it down.
func (a *App) startServer(ctx context.Context, port int) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		a.logger.Info("🩺 Shutting down health check server...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Health check server shutdown failed", "error", err)
		}
	}
}
