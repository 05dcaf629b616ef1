package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/api"
	"github.com/metacatalog/catalog/internal/api/handlers"
	"github.com/metacatalog/catalog/internal/core/auth"
	"github.com/metacatalog/catalog/internal/core/datametric"
	"github.com/metacatalog/catalog/internal/core/event"
	"github.com/metacatalog/catalog/internal/core/health"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/core/metric"
	"github.com/metacatalog/catalog/internal/core/metricset"
	"github.com/metacatalog/catalog/internal/core/metricsettree"
	"github.com/metacatalog/catalog/internal/core/organization"
	"github.com/metacatalog/catalog/internal/core/property"
	"github.com/metacatalog/catalog/internal/core/validation"
	"github.com/metacatalog/catalog/internal/metrics"
	"github.com/metacatalog/catalog/internal/storage/cache"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.MigrateOnStart {
		if err := migrateUp(cfg, log); err != nil {
			return err
		}
	}

	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	log.Info("translation cache ready", zap.String("backend", cfg.Cache.Backend))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	red := metrics.NewRED(reg)

	registry := property.NewService(
		property.NewRepository(db),
		metadata.NewInvalidator(store),
		log,
		red.Component("property"),
	)
	schemas := validation.NewService(registry)

	opts := []metadata.Option{
		metadata.WithCacheMetrics(metrics.NewCacheMetrics(reg)),
		metadata.WithRecorder(red.Component("translator")),
	}
	if cfg.Metadata.ValidateValues {
		opts = append(opts, metadata.WithValueChecker(schemas))
	}
	translator := metadata.NewTranslator(registry, store, log, opts...)

	events := event.NewService(event.NewRepository(db), red.Component("event"))
	audit := handlers.NewAudit(events, log)
	pagination := cfg.Pagination

	metricSvc := metric.NewService(metric.NewRepository(db), translator, red.Component("metric"))
	metricSetSvc := metricset.NewService(metricset.NewRepository(db), translator, red.Component("metric_set"))
	treeSvc := metricsettree.NewService(metricsettree.NewRepository(db), translator, red.Component("metric_set_tree"))
	dataMetricSvc := datametric.NewService(datametric.NewRepository(db), translator, red.Component("data_metric"))
	orgSvc := organization.NewService(organization.NewRepository(db), red.Component("organization"))

	h := api.Handlers{
		Property:      handlers.NewPropertyHandler(registry, translator, schemas, audit, pagination),
		Metric:        handlers.NewMetricHandler(metricSvc, audit, pagination),
		MetricSet:     handlers.NewMetricSetHandler(metricSetSvc, audit, pagination),
		MetricSetTree: handlers.NewMetricSetTreeHandler(treeSvc, audit, pagination),
		DataMetric:    handlers.NewDataMetricHandler(dataMetricSvc, audit, pagination),
		Organization:  handlers.NewOrganizationHandler(orgSvc, pagination),
		Event:         handlers.NewEventHandler(events, pagination),
		Health:        handlers.NewHealthHandler(health.NewService(db, store, 0, log)),
	}

	router := api.NewRouter(auth.NewService(&cfg.JWT), h, log, api.RouterConfig{
		PathPrefix:     cfg.Server.PathPrefix,
		HideDetail:     cfg.Server.IsProduction(),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(cfg.Server.Mode),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := postgres.NewMigrator(cfg.Database.URL(), log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
