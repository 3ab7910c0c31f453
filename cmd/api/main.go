package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/account-api/internal/api"
	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/service"
	"github.com/userhub/account-api/internal/infrastructure/config"
	mongodb "github.com/userhub/account-api/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/account-api/internal/infrastructure/db/redis"
	"github.com/userhub/account-api/internal/infrastructure/mail"
	"github.com/userhub/account-api/internal/infrastructure/storage"
	"github.com/userhub/account-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Mail, templates, image store ---
	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return err
	}

	templates, err := mail.NewTemplates()
	if err != nil {
		return err
	}

	images, err := storage.NewImageStore(ctx, storage.Config{
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		Endpoint:      cfg.S3.Endpoint,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	// --- Services ---
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.RefreshTokenSecret, 0, 0)
	limiter := redisdb.NewSendLimiter(rdb, 0)

	authService := service.NewAuthService(userRepo, tokens, mailer, templates, images, limiter,
		service.AuthConfig{
			BackendURL:  cfg.BackendURL,
			FrontendURL: cfg.FrontendURL,
		}, log)
	userService := service.NewUserService(userRepo)

	if err := seedAdmin(ctx, cfg, userRepo, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		UserService: userService,
		Tokens:      tokens,
		Templates:   templates,
		FrontendURL: cfg.FrontendURL,
		Mongo:       db,
		Redis:       rdb,
		Log:         log,
	})

	// --- Serve with graceful shutdown ---
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting account api")
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// seedAdmin creates a verified admin account on first boot when the
// credentials are configured. An existing record with the same email wins.
func seedAdmin(ctx context.Context, cfg *config.Config, repo *mongodb.MongoUserRepository, log zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := repo.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = repo.Create(ctx, &domain.User{
		Name:         "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
		return err
	}
	if err == nil {
		log.Info().Str("email", cfg.AdminEmail).Msg("seeded admin account")
	}
	return nil
}
