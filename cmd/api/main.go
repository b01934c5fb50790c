package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-account-api/internal/application/avatar"
	"github.com/go-account-api/internal/application/profile"
	"github.com/go-account-api/internal/application/recovery"
	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	s3infra "github.com/go-account-api/internal/infrastructure/s3"
	"github.com/go-account-api/internal/infrastructure/smtp"
	"github.com/go-account-api/internal/infrastructure/sns"
	"github.com/go-account-api/internal/pkg/code"
	"github.com/go-account-api/internal/pkg/mailtmpl"
	"github.com/go-account-api/internal/pkg/password"
	transporthttp "github.com/go-account-api/internal/transport/http"
	appmiddleware "github.com/go-account-api/internal/transport/http/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.AppEnv))

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)
	accountRepo := dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts)
	otpRepo := dynamo.NewOtpRepo(dynamoClient, cfg.DynamoTables.OtpCodes, cfg.OTPTTL)

	// JWT provider (optional: without keys, verification tokens fall back to
	// random strings and Bearer routes answer 401).
	var jwtProvider *jwtinfra.Provider
	codes := code.NewGenerator(nil)
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
		codes = code.NewGenerator(p)
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		slog.Error("mailer not available", "driver", cfg.NotifyDriver, "err", err)
		os.Exit(1)
	}
	renderer := mailtmpl.NewRenderer(cfg.AppName, cfg.ClientURL)

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	metrics, err := appmiddleware.NewHTTPMetrics(appmiddleware.HTTPMetricsOptions{})
	if err != nil {
		slog.Error("metrics not available", "err", err)
		os.Exit(1)
	}

	deps := &transporthttp.Deps{
		Profile: profile.NewService(accountRepo, avatar.NewService(s3Store)),
		Verification: verification.NewService(verification.ServiceDeps{
			AccountRepo: accountRepo,
			OtpRepo:     otpRepo,
			Tokens:      codes,
			Mailer:      mailer,
			Renderer:    renderer,
		}),
		Recovery: recovery.NewService(recovery.ServiceDeps{
			AccountRepo: accountRepo,
			OtpRepo:     otpRepo,
			Codes:       codes,
			Hasher:      password.NewHasher(cfg.BcryptCost),
			Mailer:      mailer,
			Renderer:    renderer,
		}),
		JWTProvider: jwtProvider,
		Metrics:     metrics,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newMailer picks the notification gateway named by NOTIFY_DRIVER.
func newMailer(cfg *config.Config) (smtp.Mailer, error) {
	switch cfg.NotifyDriver {
	case config.NotifySMTP:
		return smtp.NewMailer(cfg), nil
	case config.NotifySNS:
		return sns.NewTopicMailer(cfg)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.NotifyDriver)
	}
}
