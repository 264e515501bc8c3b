package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/audit"
	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/database"
	"github.com/mrlokans/uploadauth/internal/database/accounts"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	http_controllers "github.com/mrlokans/uploadauth/internal/http"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
	"github.com/mrlokans/uploadauth/internal/scheduler"
	"github.com/mrlokans/uploadauth/internal/storage"
	"github.com/mrlokans/uploadauth/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is the fully wired service.
type App struct {
	Router *gin.Engine
	DB     *database.Database

	log        logging.Logger
	limiter    *auth.RateLimiter
	taskClient *tasks.Client
	taskCancel context.CancelFunc
	scheduler  *scheduler.LoginHistoryCleanupScheduler

	shutdownOnce sync.Once
}

// Build wires every component from cfg. The returned App owns the database,
// the task queue and the background goroutines; call Shutdown to release them.
func Build(ctx context.Context, cfg config.Config, version string, log logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	app := &App{DB: db, log: log}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	issuer, err := auth.NewIssuer(cfg.Token)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}

	accountRepo := accounts.NewRepository(db.DB)
	eventRepo := loginevents.NewRepository(db.DB)
	history := audit.NewHistory(eventRepo)

	app.limiter = auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	service := auth.NewService(auth.Dependencies{
		Accounts: accountRepo,
		Hasher:   auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength),
		Issuer:   issuer,
		Recorder: audit.NewRecorder(eventRepo, log.With("component", "audit"), reg),
		Limiter:  app.limiter,
		Admin:    cfg.Admin,
		Metrics:  reg,
		Logger:   log.With("component", "auth"),
	})
	resolver := auth.NewResolver(issuer, accountRepo, log.With("component", "auth"), reg)

	if cfg.Admin.BootstrapOnStart {
		created, acct, err := service.BootstrapAdmin(ctx)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			log.Info(ctx, "admin account created", "email", acct.Email)
		}
	}

	if err := app.startCleanup(ctx, cfg, history, reg); err != nil {
		app.Shutdown(ctx)
		return nil, err
	}

	var minter storage.Minter
	if cfg.Storage.Configured() {
		s3Minter, err := storage.NewS3Minter(ctx, cfg.Storage)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		minter = s3Minter
		log.Info(ctx, "object storage configured", "bucket", cfg.Storage.Bucket, "endpoint", cfg.Storage.Endpoint)
	} else {
		log.Warn(ctx, "object storage is not configured; upload tokens are disabled")
	}

	var csrfSecret []byte
	if cfg.Auth.CSRFSecret != "" {
		csrfSecret = []byte(cfg.Auth.CSRFSecret)
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Accounts:      service,
		History:       history,
		Uploads:       storage.NewUploadService(cfg.Storage, minter, reg, log.With("component", "storage")),
		Database:      db,
		Middleware:    auth.NewMiddleware(resolver, log),
		Resolver:      resolver,
		SecureCookies: cfg.Auth.SecureCookies,
		CSRFSecret:    csrfSecret,
		Metrics:       reg,
		Logger:        log.With("component", "http"),
		AppName:       cfg.App.Name,
		Version:       version,
	})

	return app, nil
}

// startCleanup wires login history retention: through the task queue when
// it is enabled, inline otherwise.
func (a *App) startCleanup(ctx context.Context, cfg config.Config, history *audit.History, reg *metrics.Registry) error {
	var trigger scheduler.CleanupTrigger = scheduler.CleanupFunc(func(ctx context.Context, days int) error {
		deleted, err := history.Prune(ctx, days)
		if err == nil {
			reg.LoginEventsCleanedUp(deleted)
		}
		return err
	})

	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(cfg.Database.Path, cfg.Tasks, a.log)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		client.Register(tasks.NewCleanupLoginEventsQueue(history, reg, a.log.With("component", "tasks")))

		var taskCtx context.Context
		taskCtx, a.taskCancel = context.WithCancel(context.Background())
		go client.Start(taskCtx)

		a.taskClient = client
		trigger = client
	}

	a.scheduler = scheduler.NewLoginHistoryCleanupScheduler(cfg.LoginHistory, trigger, a.log.With("component", "scheduler"))
	return a.scheduler.Start(ctx)
}

// Shutdown stops background work and closes the database. Safe on a
// partially built App and safe to call more than once.
func (a *App) Shutdown(ctx context.Context) {
	a.shutdownOnce.Do(func() { a.shutdown(ctx) })
}

func (a *App) shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if a.taskCancel != nil {
			a.taskCancel()
		}
		if err := a.taskClient.Close(); err != nil {
			a.log.Error(ctx, "error closing task client", "error", err)
		}
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.log.Error(ctx, "error closing database", "error", err)
		}
	}
}

func Serve(router *gin.Engine, cfg config.Config, log logging.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(context.Background(), "starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}
	log.Info(context.Background(), "shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)

	// Background work stops after in-flight requests have drained.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server exited")
	return nil
}

func Run(cfg config.Config, version string) {
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	ctx := context.Background()

	log.Info(ctx, "starting", "app", cfg.App.Name, "version", version, "env", cfg.App.Environment)
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(ctx, cfg, version, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	if err := Serve(app.Router, cfg, log, app.Shutdown); err != nil {
		log.Error(ctx, "server error", "error", err)
		os.Exit(1)
	}
}
