// Package handlers provides the HTTP request handlers for the agriculture
// inference API.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/advisory"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
	"github.com/hingan-ai/agri-api/internal/weather"
)

const serviceVersion = "1.0.0"

// Options configures handler runtime behavior.
type Options struct {
	UploadDir      string
	DiseaseTimeout time.Duration
}

type cropModel interface {
	Predict(features []float64) (classID int, confidence float64, err error)
}

type diseaseModel interface {
	Predict(ctx context.Context, tensor []float32) (classIdx int, confidence float64, err error)
}

type yieldModel interface {
	Predict(in registry.YieldInput) (float64, error)
}

type fertilizerModel interface {
	Predict(in registry.FertilizerInput) (name string, confidence float64, err error)
}

type resultStore interface {
	Record(ctx context.Context, table, userID string, payload map[string]any)
	Recent(ctx context.Context, table, userID string, limit int) ([]store.Entry, error)
}

type weatherService interface {
	Configured() bool
	Current(ctx context.Context, location string) (*weather.Report, error)
}

// Handler encapsulates dependencies for HTTP handlers. A nil model field
// means that capability is absent and its endpoint answers with a fixed
// "model not available" error.
type Handler struct {
	crop       cropModel
	disease    diseaseModel
	yield      yieldModel
	fertilizer fertilizerModel
	available  []string

	kb      *advisory.KnowledgeBase
	store   resultStore
	weather weatherService
	opts    Options
}

// New creates a new Handler instance wired to the loaded model registry.
func New(reg *registry.Registry, kb *advisory.KnowledgeBase, st *store.Gateway, wc *weather.Client, opts Options) *Handler {
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.DiseaseTimeout <= 0 {
		opts.DiseaseTimeout = 30 * time.Second
	}

	h := &Handler{kb: kb, opts: opts, available: reg.Available()}
	if m := reg.Crop(); m != nil {
		h.crop = m
	}
	if m := reg.Disease(); m != nil {
		h.disease = m
	}
	if m := reg.Yield(); m != nil {
		h.yield = m
	}
	if m := reg.Fertilizer(); m != nil {
		h.fertilizer = m
	}
	if st != nil {
		h.store = st
	}
	if wc != nil {
		h.weather = wc
	}
	return h
}

// Health returns the health status of the service.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Home returns the service banner with the loaded models and the endpoint
// directory.
func (h *Handler) Home(c *gin.Context) {
	models := h.available
	if models == nil {
		models = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "HinganAI Agriculture Platform API",
		"version":       serviceVersion,
		"status":        "active",
		"models_loaded": models,
		"endpoints": gin.H{
			"crop_recommendation":       "POST /api/crop-recommendation",
			"disease_detection":         "POST /api/disease-detection",
			"crop_yield_prediction":     "POST /api/crop-yield-prediction",
			"fertilizer_recommendation": "POST /api/fertilizer-recommendation",
			"weather":                   "GET /api/weather/:location",
			"user_history":              "GET /api/user/history/:user_id",
		},
	})
}

// NotFound is the catch-all route handler.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// firstMissing returns the first required field absent from the request body,
// in declared order. Validation fails fast on the first miss.
func firstMissing(body map[string]any, required []string) (string, bool) {
	for _, name := range required {
		if _, ok := body[name]; !ok {
			return name, true
		}
	}
	return "", false
}

// asFloat coerces a decoded JSON value to float64. Numeric strings are
// accepted the way the frontend sends them.
func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert %q to float", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("could not convert %v to float", v)
	}
}

// asInt coerces a decoded JSON value to int, truncating like an int() cast.
func asInt(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("could not convert %q to int", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("could not convert %v to int", v)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// userID extracts the optional caller-supplied identifier.
func userID(body map[string]any) string {
	return asString(body["user_id"])
}

// persist writes a prediction row when both a store and a user identifier are
// present. Best effort; the response never depends on it.
func (h *Handler) persist(ctx context.Context, table, user string, payload map[string]any) {
	if h.store == nil || user == "" {
		return
	}
	h.store.Record(ctx, table, user, payload)
}
