package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-ranker/analysis"
	"resume-ranker/config"
	"resume-ranker/infrastructure"
	"resume-ranker/interfaces"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	zl := infrastructure.NewZap(cfg.Log.Level, cfg.Log.Format)
	defer zl.Sync()
	log := infrastructure.NewLogger(zl)

	if err := run(cfg, log); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log infrastructure.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := infrastructure.SetUnidocLicense(cfg.Unidoc.LicenseAPIKey); err != nil {
		log.WithError(err).Warn("unidoc license not applied", nil)
	}

	db, err := infrastructure.NewMySQLConnection(cfg.Database)
	if err != nil {
		return err
	}
	if err := infrastructure.Migrate(db); err != nil {
		return err
	}

	users := infrastructure.NewUserRepository(db)
	jobs := infrastructure.NewJobRepository(db)
	resumes := infrastructure.NewResumeRepository(db)
	if err := infrastructure.SeedAdmin(ctx, users, cfg.Admin, log); err != nil {
		return err
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	blobs, err := infrastructure.NewBlobStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	events, err := infrastructure.NewEventPublisher(cfg.RabbitMQ, log)
	if err != nil {
		return err
	}
	defer events.Close()

	if cfg.LLM.APIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, analysis requests will fail", nil)
	}

	svc := analysis.NewService(analysis.Deps{
		Rasterizer: infrastructure.NewRasterizer(cfg.Raster),
		Transport:  infrastructure.NewGeminiClient(cfg.LLM),
		Jobs:       jobs,
		Resumes:    resumes,
		Blobs:      blobs,
		Events:     events,
		Logger:     log,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), infrastructure.GinLogger(log))
	interfaces.NewHTTPHandler(router, interfaces.Deps{
		Analyzer:      svc,
		Resumes:       resumes,
		Jobs:          jobs,
		Users:         users,
		Tokens:        infrastructure.NewTokenStore(rdb, cfg.Redis.TokenTTL),
		Logger:        log,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		PublicURL:     cfg.Server.PublicURL,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", map[string]interface{}{"addr": cfg.Server.Addr, "model": cfg.LLM.Model})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
