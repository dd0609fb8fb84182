package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/countdown"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open task store", "error", err)
	}
	defer store.Close()

	hub := ws.NewHub()
	board := service.NewBoard(store, service.WithRemoteTimeout(cfg.RemoteTimeout()))
	if err := board.Load(ctx); err != nil {
		logger.Fatal("failed to load tasks", "error", err)
	}

	engine := countdown.NewEngine(board, cfg.CountdownInterval(), countdown.WithLocation(cfg.Location()))
	board.Subscribe(func(ev service.Event) {
		if ev.ChangesCollection() {
			engine.Rebuild()
		}
	})
	detach := hub.Attach(board, engine)
	defer detach()
	go engine.Run(ctx)

	if rdb := db.Redis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		middleware.InitRedisRateLimiter(rdb)
		defer rdb.Close()
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewHandler(board, service.NewConfirmTokens(cfg.ConfirmSecret, cfg.ConfirmTTL()), cfg.Location())
	httpServer.RegisterRoutes(r, h, handlers.NewHealthHandler(store, hub, version), hub, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	cancel()
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
