package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/account-lifecycle-server/api"
	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/config"
	"github.com/carson-networks/account-lifecycle-server/internal/jobs"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
	"github.com/carson-networks/account-lifecycle-server/internal/notify"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("account-lifecycle-server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewPrometheusCollector("lifecycle")
	if err := collector.Register(prometheus.DefaultRegisterer); err != nil {
		logger.WithError(err).Fatal("metrics.Register")
		return
	}

	dbStorage, err := storage.NewStorage(envConfig)
	if err != nil {
		logger.WithError(err).Fatal("storage.NewStorage")
		return
	}
	defer dbStorage.Close()

	gateway, closeColdStore, err := newColdStore(envConfig, collector, logger)
	if err != nil {
		logger.WithError(err).Fatal("coldstore.New")
		return
	}
	defer closeColdStore()

	machine := lifecycle.NewMachine(logger, notify.SMSHook(notify.NewLogDispatcher(logger), logger))
	if len(envConfig.Kafka.Brokers) > 0 {
		publisher := notify.NewKafkaPublisher(envConfig.Kafka.Brokers, envConfig.Kafka.Topic, logger)
		defer publisher.Close()
		machine.AddHook(publisher.Hook())
	}

	op := operator.NewOperatorDelegator(dbStorage, envConfig.Workers, logger)
	op.Start()

	restorer := jobs.NewRestorer(gateway, op, machine, logger)

	locker, closeLocker, err := newLocker(envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("jobs.NewLocker")
		return
	}
	defer closeLocker()

	scheduler := jobs.NewScheduler(locker, jobs.SchedulerConfig{
		LockTTL:    envConfig.Jobs.LockTTL,
		RunTimeout: envConfig.Jobs.RunTimeout,
	}, collector, logger)
	scheduler.Register(jobs.NewArchivalJob(dbStorage, gateway, op, collector, logger), envConfig.Jobs.ArchiveInterval)
	scheduler.Register(jobs.NewRestorationJob(dbStorage, gateway, restorer, collector, logger), envConfig.Jobs.RestoreInterval)

	svc := service.NewAccountService(dbStorage, gateway, op, machine, restorer, collector, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		httpRest := api.Rest{
			Logger:    logger,
			Port:      envConfig.HTTPPort,
			Service:   svc,
			ColdStore: gateway,
		}
		return httpRest.Serve(groupCtx)
	})
	group.Go(func() error {
		scheduler.Start(groupCtx)
		<-groupCtx.Done()
		scheduler.Stop()
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("account-lifecycle-server stopped with error")
	}
	op.Stop()
	logger.Info("account-lifecycle-server stopped")
}

func newColdStore(env *config.Config, collector metrics.Collector, log *logrus.Logger) (coldstore.Gateway, func(), error) {
	resilience := coldstore.ResilientConfig{
		Timeout:         env.ColdStore.Timeout,
		Retries:         env.ColdStore.Retries,
		BreakerFailures: env.ColdStore.BreakerFailures,
		BreakerOpenFor:  env.ColdStore.BreakerOpenFor,
	}

	if env.ColdStore.Driver == "memory" {
		log.Warn("ColdStore.Memory.Enabled")
		return coldstore.NewResilientGateway(coldstore.NewMemoryGateway(), resilience, collector, log), func() {}, nil
	}

	db, err := sql.Open("postgres", storage.ConnectionString(env.ColdStore.Postgres))
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(env.ColdStore.Postgres.MaxOpenConns)
	inner := coldstore.NewPostgresGateway(db)
	return coldstore.NewResilientGateway(inner, resilience, collector, log), func() { _ = db.Close() }, nil
}

func newLocker(env *config.Config, log *logrus.Logger) (jobs.Locker, func(), error) {
	if env.Redis.Address == "" {
		log.Info("Jobs.Locker.Local")
		return jobs.NewLocalLocker(), func() {}, nil
	}
	client, err := jobs.NewRedisClient(env.Redis.Address)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("address", env.Redis.Address).Info("Jobs.Locker.Redis")
	return jobs.NewRedisLocker(client, "lifecycle:lock:"), client.Close, nil
}
