package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	appconfig "github.com/fedutinova/yanews/internal/config"
	"github.com/fedutinova/yanews/internal/database"
	"github.com/fedutinova/yanews/internal/redis"
	"github.com/fedutinova/yanews/internal/repository"
	"github.com/fedutinova/yanews/internal/server"
	httpapi "github.com/fedutinova/yanews/internal/transport/http"
	"github.com/fedutinova/yanews/internal/usecase"
)

func main() {
	cfg := appconfig.Load()
	logger := cfg.Logger()
	slog.SetDefault(logger)
	slog.Info("starting yanews", "addr", cfg.HTTPAddr, "store", cfg.Store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store repository.Store
	switch cfg.Store {
	case appconfig.StoreMemory:
		store = repository.NewMemory()
		slog.Warn("using in-memory store, data is lost on restart")
	default:
		db, err := database.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx); err != nil {
				slog.Error("failed to migrate database", "err", err)
				os.Exit(1)
			}
		}
		store = repository.New(db)
	}

	handlers := &httpapi.Handlers{
		Store:  store,
		Config: cfg,
	}

	var blacklist auth.Blacklist
	redisService, err := redis.New(ctx, cfg.RedisURL)
	switch {
	case err == nil:
		defer redisService.Close()
		blacklist = redisService
		handlers.Redis = redisService
	case cfg.Store == appconfig.StoreMemory:
		slog.Warn("redis unavailable, revoked tokens are kept in memory", "err", err)
		blacklist = auth.NewMemoryBlacklist()
	default:
		slog.Error("failed to connect to Redis", "err", err)
		os.Exit(1)
	}

	authUseCase := usecase.NewAuthUseCase(store, blacklist, logger, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := authUseCase.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			slog.Error("failed to seed admin user", "err", err)
			os.Exit(1)
		}
	}

	pages, err := httpapi.NewPages()
	if err != nil {
		slog.Error("failed to load templates", "err", err)
		os.Exit(1)
	}

	handlers.News = usecase.NewNewsUseCase(store, logger, cfg.NewsCountOnHomePage)
	handlers.Auth = authUseCase
	handlers.Pages = pages
	handlers.Authn = &auth.Authenticator{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Cookie:    cfg.SessionCookie,
		Blacklist: blacklist,
		Users:     store,
	}
	r := server.NewRouter(handlers)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	slog.Info("shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
	cancel()
}
