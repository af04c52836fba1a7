package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"kql-assistant-backend/config"
	_ "kql-assistant-backend/docs"
	"kql-assistant-backend/internal/audit"
	"kql-assistant-backend/internal/controller"
	"kql-assistant-backend/internal/elasticsearch"
	"kql-assistant-backend/internal/kafka"
	"kql-assistant-backend/internal/kusto"
	"kql-assistant-backend/internal/observability"
	"kql-assistant-backend/internal/repository"
	"kql-assistant-backend/internal/scheduler"
	"kql-assistant-backend/internal/service"
	"kql-assistant-backend/internal/timescaledb"
)

// @title           KQL Assistant API
// @version         1.0
// @description     Answers natural-language questions about Event, Heartbeat and Perf data by generating a KQL query and running it against Kusto.

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         kql
// @tag.description  Question to KQL to result
// @tag.name         runs
// @tag.description  Recorded pipeline runs

func main() {
	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewAuditBackends,
			service.NewOpenAIQueryGenerator,
			kusto.NewManagedIdentityExecutor,
			service.NewKQLService,
			service.NewRunQueryService,
			controller.NewKQLController,
			controller.NewRunController,
			scheduler.NewRetentionScheduler,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			func(*cron.Cron) {},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute) // audit sinks retry their connection
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
	log.Info().Msg("Exiting.")
}

func NewConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	observability.SetupLogging(cfg.Logging)
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID(), observability.Metrics(), observability.AccessLog())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", observability.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", observability.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// AuditBackends holds whatever the enabled audit sinks contribute. Read-side
// repositories stay nil when their sink is disabled.
type AuditBackends struct {
	fx.Out

	Recorder audit.Recorder
	Search   repository.RunSearchRepository
	Stats    repository.RunStatsRepository
	Purger   repository.RunPurger
}

func NewAuditBackends(lc fx.Lifecycle, cfg *config.Config) (AuditBackends, error) {
	var out AuditBackends
	var sinks []audit.Sink

	if cfg.AuditSinkEnabled(config.AuditSinkElasticsearch) {
		store, err := elasticsearch.NewRunStore(lc, cfg)
		if err != nil {
			return out, err
		}
		searchRepo, err := elasticsearch.NewRunRepository(cfg)
		if err != nil {
			return out, err
		}
		sinks = append(sinks, store)
		out.Search = searchRepo
	}

	if cfg.AuditSinkEnabled(config.AuditSinkKafka) {
		producer, err := kafka.NewKafkaRunProducer(lc, cfg)
		if err != nil {
			return out, err
		}
		sinks = append(sinks, producer)
	}

	if cfg.AuditSinkEnabled(config.AuditSinkTimescaleDB) {
		store, pool, err := timescaledb.ProvideRunStore(lc, cfg)
		if err != nil {
			return out, err
		}
		statsRepo, err := timescaledb.NewRunStatsRepository(pool)
		if err != nil {
			return out, err
		}
		sinks = append(sinks, store)
		out.Stats = statsRepo
		out.Purger = store
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	log.Info().Strs("sinks", names).Msg("Audit trail configured")

	out.Recorder = audit.NewRecorder(sinks...)
	return out, nil
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	kqlController *controller.KQLController,
	runController *controller.RunController,
) {
	controller.RegisterKQLRoutes(router, kqlController)
	controller.RegisterRunRoutes(router, runController)
	controller.RegisterHealthRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}
