package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"smartops.app/gateway/common/id"
	"smartops.app/gateway/common/logger"
	"smartops.app/gateway/common/otel"
	"smartops.app/gateway/core/config"
	"smartops.app/gateway/core/db"
	"smartops.app/gateway/internal/alarm"
	"smartops.app/gateway/internal/cache"
	"smartops.app/gateway/internal/dispatch"
	"smartops.app/gateway/internal/http/middleware"
	httprouter "smartops.app/gateway/internal/http/router"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/service"
	"smartops.app/gateway/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet, OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "gateway starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected")

	stores := store.NewStores(database.Pool())
	history := cache.NewHistoryCache(redisClient, cfg.Redis.HistoryTTL)

	registry := llm.NewRegistry(
		llm.NewDeepSeek(llm.Config(cfg.DeepSeek)),
		llm.NewTongyi(llm.Config(cfg.Tongyi)),
	)

	notifiers := map[model.NotifyType]alarm.Notifier{
		model.NotifyWebhook: alarm.NewWebhookNotifier(),
		model.NotifyChatBot: alarm.NewChatBotNotifier(),
	}
	smtpCfg := alarm.SMTPConfig(cfg.SMTP)
	if smtpCfg.Enabled() {
		notifiers[model.NotifyEmail] = alarm.NewEmailNotifier(smtpCfg)
	} else {
		slog.InfoContext(ctx, "smtp not configured, email alarms disabled")
	}
	trigger := alarm.NewTrigger(stores.AlarmRules(), notifiers)

	dispatcher := dispatch.NewDispatcher(
		dispatch.NewInvoker(registry),
		stores.Tasks(),
		trigger,
		dispatch.Config{
			PrimaryTimeout:  cfg.Dispatch.PrimaryTimeout,
			FallbackTimeout: cfg.Dispatch.FallbackTimeout,
		},
	)

	services := service.NewServices(stores, history, cfg.JWTSecret)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, dispatcher, registry, history)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(
	cfg config.Config,
	services *service.Services,
	dispatcher *dispatch.Dispatcher,
	registry *llm.Registry,
	history *cache.HistoryCache,
) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Dispatcher: dispatcher,
		Registry:   registry,
		History:    history,
	})

	return router
}

const banner = `
███████╗███╗   ███╗ █████╗ ██████╗ ████████╗ ██████╗ ██████╗ ███████╗
██╔════╝████╗ ████║██╔══██╗██╔══██╗╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝
███████╗██╔████╔██║███████║██████╔╝   ██║   ██║   ██║██████╔╝███████╗
╚════██║██║╚██╔╝██║██╔══██║██╔══██╗   ██║   ██║   ██║██╔═══╝ ╚════██║
███████║██║ ╚═╝ ██║██║  ██║██║  ██║   ██║   ╚██████╔╝██║     ███████║
╚══════╝╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝     ╚══════╝
`
