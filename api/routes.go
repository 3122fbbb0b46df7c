package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/handlers/v1/account"
	"github.com/carson-networks/account-lifecycle-server/internal/handlers/v1/status"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
)

type Rest struct {
	Logger    *logrus.Logger
	Port      string
	Service   *service.AccountService
	ColdStore coldstore.Gateway
	Gatherer  prometheus.Gatherer
}

// Router builds the mux with /status, /metrics and the huma operations.
func (r *Rest) Router() *mux.Router {
	router := mux.NewRouter()

	statusHandler := status.NewHandler(r.ColdStore)
	router.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler)).Methods(http.MethodGet)

	gatherer := r.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := humamux.New(router, huma.DefaultConfig("Account Lifecycle API", "1.0.0"))
	api.UseMiddleware(logging.HumaMiddleware(r.Logger))

	account.NewGetAccountHandler(r.Service).Register(api)
	account.NewListAccountsHandler(r.Service).Register(api)
	account.NewChangeStatusHandler(r.Service).Register(api)
	account.NewArchivedAccountsHandler(r.Service).Register(api)

	return router
}

// Serve listens until ctx is done, then shuts the server down.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
