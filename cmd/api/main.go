package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/auth"
	"github.com/vietnam-explorer/api/internal/client"
	"github.com/vietnam-explorer/api/internal/config"
	"github.com/vietnam-explorer/api/internal/handler"
	"github.com/vietnam-explorer/api/internal/logger"
	middlewarepkg "github.com/vietnam-explorer/api/internal/middleware"
	"github.com/vietnam-explorer/api/internal/router"
	"github.com/vietnam-explorer/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zlog.Sync() }()

	httpClient := &http.Client{Timeout: 90 * time.Second}

	extractor := client.NewGlinerClient(httpClient, cfg.HFAPIURL, cfg.HFToken, zlog.Named("gliner"))
	geocoder := client.NewNominatimClient(httpClient, cfg.NominatimBaseURL, cfg.UserAgent(), zlog.Named("nominatim"))
	pois := client.NewOverpassClient(httpClient, cfg.OverpassBaseURL, cfg.UserAgent(), zlog.Named("overpass"))

	parser := service.NewIntentParser()
	resolver := service.NewDialogueResolver(parser, geocoder, zlog.Named("resolver"))
	chatService := service.NewChatService(extractor, parser, resolver, pois, zlog.Named("chat"))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	handlers := router.Handlers{
		Auth:  handler.NewAuthHandler(jwtManager, cfg.AuthAPIKey),
		Chat:  handler.NewChatHandler(chatService, zlog.Named("handler")),
		Place: handler.NewPlaceHandler(geocoder, pois, zlog.Named("handler")),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zlog.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	zlog.Info("server started", zap.String("port", cfg.Port), zap.Bool("auth", cfg.AuthEnabled()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("graceful shutdown failed", zap.Error(err))
	}
}
