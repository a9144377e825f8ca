// Package api wires the HTTP routes, middleware, and server lifecycle.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hingan-ai/agri-api/internal/handlers"
)

// Options configures the HTTP server wiring.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wraps the Gin engine and associated configuration.
type Server struct {
	engine *gin.Engine
}

// NewServer constructs a Server with all HTTP routes configured.
func NewServer(handler *handlers.Handler, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	if opts.MaxUploadBytes > 0 {
		engine.MaxMultipartMemory = opts.MaxUploadBytes
	}
	engine.Use(gin.Recovery(), requestIDMiddleware(), metricsMiddleware(), requestLogger())
	engine.Use(corsMiddleware(opts.AllowedOrigins))

	engine.GET("/health", handler.Health)
	engine.GET("/", handler.Home)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/crop-recommendation", handler.CropRecommendation)
	api.POST("/disease-detection", handler.DiseaseDetection)
	api.POST("/crop-yield-prediction", handler.CropYieldPrediction)
	api.POST("/fertilizer-recommendation", handler.FertilizerRecommendation)
	api.GET("/weather/:location", handler.Weather)
	api.GET("/user/history/:user_id", handler.UserHistory)

	engine.NoRoute(handler.NotFound)

	return &Server{engine: engine}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	cfg.AllowOriginFunc = originMatcher(origins)
	return cors.New(cfg)
}

// originMatcher builds the allow check. Entries may carry a trailing
// wildcard for preview deployments, e.g. "https://hingan-ai-*.vercel.app".
func originMatcher(origins []string) func(string) bool {
	var exact []string
	var prefixes []string
	for _, o := range origins {
		if i := strings.Index(o, "*"); i >= 0 {
			prefixes = append(prefixes, o[:i])
		} else {
			exact = append(exact, o)
		}
	}
	return func(origin string) bool {
		for _, o := range exact {
			if origin == o {
				return true
			}
		}
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(origin, p) {
				return true
			}
		}
		return false
	}
}

// Engine exposes the underlying Gin engine for advanced use (testing, etc.).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start launches the HTTP server on the provided address.
func (s *Server) Start(addr string) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return srv
}
