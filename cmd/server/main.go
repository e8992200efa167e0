package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"postboard/internal/auth"
	"postboard/internal/feed"
	"postboard/internal/server"
	"postboard/internal/storage"
	"postboard/internal/upload"
	"postboard/pkg/config"
	"postboard/pkg/email"
	"postboard/pkg/file"
	"postboard/pkg/httpserver"
	"postboard/pkg/logger"
	"postboard/pkg/pg"
	"postboard/pkg/ratelimit"
	"postboard/pkg/redis"
	"postboard/pkg/requestid"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitRedis    bool          `env:"RATE_LIMIT_REDIS" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "postboard"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	healthchecks := map[string]server.Healthcheck{
		"postgres": pg.Healthcheck(pool),
	}

	var authCfg auth.Config
	config.MustLoad(&authCfg)
	tokens, err := auth.NewTokens(authCfg)
	if err != nil {
		return fmt.Errorf("init tokens: %w", err)
	}

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	sender, err := newEmailSender(emailCfg, appCfg.Environment, log)
	if err != nil {
		return fmt.Errorf("init email sender: %w", err)
	}

	users := storage.NewUserRepository(pool)
	posts := storage.NewPostRepository(pool)

	authSvc := auth.NewService(users, auth.NewHasher(authCfg.BcryptCost), tokens, sender, appCfg.BaseURL, log)
	feedSvc := feed.NewService(posts, log)

	var fileCfg file.Config
	config.MustLoad(&fileCfg)
	fileStorage, staticDir, err := newFileStorage(ctx, fileCfg)
	if err != nil {
		return fmt.Errorf("init file storage: %w", err)
	}

	limiter, err := newLimiter(ctx, appCfg, healthchecks)
	if err != nil {
		return fmt.Errorf("init rate limiter: %w", err)
	}

	handler := server.New(server.Deps{
		Auth:         auth.NewHandler(authSvc),
		AuthSvc:      authSvc,
		Feed:         feed.NewHandler(feedSvc),
		Upload:       upload.NewHandler(fileStorage, fileCfg.MaxUploadSize, log),
		Limiter:      limiter,
		StaticDir:    staticDir,
		Healthchecks: healthchecks,
		Log:          log,
	})

	var srvCfg httpserver.Config
	config.MustLoad(&srvCfg)
	srv := httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log))

	log.Info("starting server", slog.String("addr", srvCfg.Addr), slog.String("env", appCfg.Environment))
	return srv.Run(ctx, handler)
}

// newEmailSender picks Postmark when a server token is configured and falls
// back to the on-disk dev sender otherwise.
func newEmailSender(cfg email.Config, environment string, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken != "" {
		return email.NewPostmarkSender(cfg)
	}
	if environment == "production" {
		return nil, fmt.Errorf("postmark server token is required in production")
	}
	return email.NewDevSender(cfg.DevOutputDir, log)
}

// newFileStorage returns the configured storage backend. For local storage
// the second return value is the directory to serve under /static.
func newFileStorage(ctx context.Context, cfg file.Config) (file.Storage, string, error) {
	switch cfg.Driver {
	case "s3":
		s, err := file.NewS3Storage(ctx, cfg)
		return s, "", err
	case "local":
		s, err := file.NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown file storage driver %q", cfg.Driver)
	}
}

// newLimiter builds the credential-endpoint rate limiter. The counter lives
// in Redis when RATE_LIMIT_REDIS is set, so limits hold across replicas.
func newLimiter(ctx context.Context, cfg appConfig, healthchecks map[string]server.Healthcheck) (ratelimit.Limiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RateLimitRedis {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		healthchecks["redis"] = redis.Healthcheck(client)
		store = ratelimit.NewRedisStore(client, "postboard")
	}

	return ratelimit.NewFixedWindow(store, cfg.RateLimitRequests, cfg.RateLimitWindow)
}
