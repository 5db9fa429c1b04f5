package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vigiasalud/alert-ingestor/internal/api"
	"github.com/vigiasalud/alert-ingestor/internal/config"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/metrics"
	"github.com/vigiasalud/alert-ingestor/internal/orchestrator"
	"github.com/vigiasalud/alert-ingestor/internal/repository"
)

// SetupHTTPServer builds the ops HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	svc *orchestrator.Service,
	repo *repository.AlertRepository,
	m *metrics.Metrics,
	log logger.Logger,
) *http.Server {
	handler := api.NewHandler(svc, repo, log)
	router := api.NewRouter(handler, m, log)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// RunHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func RunHTTPServer(ctx context.Context, server *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("HTTP server listening", logger.String("addr", server.Addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("HTTP server stopped")
	return nil
}
