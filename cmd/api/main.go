package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pulseboard/lab-analysis/internal/application"
	appreports "github.com/pulseboard/lab-analysis/internal/application/reports"
	"github.com/pulseboard/lab-analysis/internal/config"
	dominsights "github.com/pulseboard/lab-analysis/internal/domain/insights"
	domreports "github.com/pulseboard/lab-analysis/internal/domain/reports"
	domresults "github.com/pulseboard/lab-analysis/internal/domain/results"
	aiclient "github.com/pulseboard/lab-analysis/internal/infra/ai/openai"
	mysqlp "github.com/pulseboard/lab-analysis/internal/infra/db/mysql"
	postgresp "github.com/pulseboard/lab-analysis/internal/infra/db/postgres"
	"github.com/pulseboard/lab-analysis/internal/infra/httpserver"
	minioStore "github.com/pulseboard/lab-analysis/internal/infra/storage"
	"github.com/pulseboard/lab-analysis/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database, driver dari config
	var (
		db          interface{ Close() error }
		reportRepo  domreports.Repository
		resultRepo  domresults.Repository
		insightRepo dominsights.Repository
		errorRepo   domreports.ErrorLog
		healthCheck middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		db = pg
		reportRepo = postgresp.NewReportRepository(pg)
		resultRepo = postgresp.NewResultRepository(pg)
		insightRepo = postgresp.NewInsightRepository(pg)
		errorRepo = postgresp.NewReportErrorRepository(pg)
		healthCheck = &middleware.DatabaseHealthChecker{DB: pg}
	default:
		my, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		db = my
		reportRepo = mysqlp.NewReportRepository(my)
		resultRepo = mysqlp.NewResultRepository(my)
		insightRepo = mysqlp.NewInsightRepository(my)
		errorRepo = mysqlp.NewReportErrorRepository(my)
		healthCheck = &middleware.DatabaseHealthChecker{DB: my}
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init service
	svc := &appreports.Service{
		Repo:      reportRepo,
		Results:   resultRepo,
		Insights:  insightRepo,
		Errors:    errorRepo,
		Documents: store,
		AI:        aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Clock:     application.SystemClock{},
		Params: appreports.Params{
			CriticalMultiplier: cfg.Analysis.CriticalMultiplier,
			AbnormalPenalty:    cfg.Analysis.AbnormalPenalty,
			CriticalPenalty:    cfg.Analysis.CriticalPenalty,
			AnalyzeTimeout:     time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
		},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": healthCheck,
		"storage":  &middleware.BlobHealthChecker{Client: store.Client(), Bucket: store.Bucket()},
	}))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
