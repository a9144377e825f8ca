// Package main is the entry point for the agriculture inference API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hingan-ai/agri-api/config"
	"github.com/hingan-ai/agri-api/internal/advisory"
	"github.com/hingan-ai/agri-api/internal/api"
	"github.com/hingan-ai/agri-api/internal/handlers"
	"github.com/hingan-ai/agri-api/internal/redisx"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
	"github.com/hingan-ai/agri-api/internal/weather"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting HinganAI Agriculture Platform API")

	cfg := config.Load()

	// Model registry: best effort, missing artifacts degrade features.
	reg := registry.Load(registry.Options{
		Dir:              cfg.ModelsDir,
		DiseaseBridgeCmd: cfg.DiseaseBridgeCmd,
		DiseaseTimeout:   cfg.DiseaseTimeout,
	})
	log.Printf("Models loaded: %s", strings.Join(reg.Available(), ", "))

	kb, err := advisory.Load()
	if err != nil {
		log.Fatalf("Failed to load advisory knowledge base: %v", err)
	}

	// Persistence is optional: the service runs without it and skips
	// history and prediction logging.
	var gateway *store.Gateway
	if cfg.DataStoreDSN != "" {
		gateway, err = store.Open(context.Background(), cfg.DataStoreDriver, cfg.DataStoreDSN)
		if err != nil {
			log.Printf("Datastore unavailable, predictions will not be logged: %v", err)
		} else {
			defer gateway.Close()
			log.Printf("Datastore connected (driver=%s)", cfg.DataStoreDriver)
		}
	} else {
		log.Println("Datastore not configured")
	}

	redisClient, err := redisx.NewClient(redisx.Config{
		Addr:        cfg.RedisAddr,
		Username:    cfg.RedisUsername,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		TLSEnabled:  cfg.RedisTLSEnabled,
		TLSInsecure: cfg.RedisTLSInsecure,
	})
	if err != nil {
		log.Printf("Redis unavailable, weather cache disabled: %v", err)
	}

	weatherClient := weather.New(weather.Options{
		BaseURL:  cfg.OpenWeatherURL,
		APIKey:   cfg.OpenWeatherAPIKey,
		Timeout:  cfg.WeatherTimeout,
		Cache:    redisClient,
		CacheTTL: cfg.WeatherCacheTTL,
	})
	if !weatherClient.Configured() {
		log.Println("Weather API key not configured, /api/weather will report an error")
	}

	h := handlers.New(reg, kb, gateway, weatherClient, handlers.Options{
		UploadDir:      cfg.UploadDir,
		DiseaseTimeout: cfg.DiseaseTimeout,
	})

	server := api.NewServer(h, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	log.Printf("Server listening on :%s", cfg.ServerPort)
	srv := server.Start(":" + cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
