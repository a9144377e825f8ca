package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/advisory"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
	"github.com/hingan-ai/agri-api/internal/weather"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCrop struct {
	classID    int
	confidence float64
	err        error
	gotInput   []float64
}

func (f *fakeCrop) Predict(features []float64) (int, float64, error) {
	f.gotInput = features
	return f.classID, f.confidence, f.err
}

type fakeDisease struct {
	classIdx   int
	confidence float64
	err        error
	called     bool
}

func (f *fakeDisease) Predict(_ context.Context, tensor []float32) (int, float64, error) {
	f.called = true
	return f.classIdx, f.confidence, f.err
}

type fakeYield struct {
	value    float64
	err      error
	gotInput registry.YieldInput
}

func (f *fakeYield) Predict(in registry.YieldInput) (float64, error) {
	f.gotInput = in
	return f.value, f.err
}

type fakeFertilizer struct {
	name       string
	confidence float64
	err        error
	gotInput   registry.FertilizerInput
}

func (f *fakeFertilizer) Predict(in registry.FertilizerInput) (string, float64, error) {
	f.gotInput = in
	return f.name, f.confidence, f.err
}

type recordedRow struct {
	table   string
	userID  string
	payload map[string]any
}

type fakeStore struct {
	rows     []recordedRow
	recentFn func(table string) ([]store.Entry, error)
}

func (f *fakeStore) Record(_ context.Context, table, userID string, payload map[string]any) {
	f.rows = append(f.rows, recordedRow{table: table, userID: userID, payload: payload})
}

func (f *fakeStore) Recent(_ context.Context, table, _ string, _ int) ([]store.Entry, error) {
	if f.recentFn == nil {
		return nil, nil
	}
	return f.recentFn(table)
}

type fakeWeather struct {
	configured bool
	report     *weather.Report
	err        error
}

func (f *fakeWeather) Configured() bool { return f.configured }

func (f *fakeWeather) Current(context.Context, string) (*weather.Report, error) {
	return f.report, f.err
}

func loadKB(t *testing.T) *advisory.KnowledgeBase {
	t.Helper()
	kb, err := advisory.Load()
	if err != nil {
		t.Fatalf("advisory.Load: %v", err)
	}
	return kb
}

// router registers the handler's routes the same way the server does.
func router(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/", h.Home)
	api := r.Group("/api")
	api.POST("/crop-recommendation", h.CropRecommendation)
	api.POST("/disease-detection", h.DiseaseDetection)
	api.POST("/crop-yield-prediction", h.CropYieldPrediction)
	api.POST("/fertilizer-recommendation", h.FertilizerRecommendation)
	api.GET("/weather/:location", h.Weather)
	api.GET("/user/history/:user_id", h.UserHistory)
	r.NoRoute(h.NotFound)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	w := doJSON(t, router(h), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["timestamp"] == "" {
		t.Fatal("missing timestamp")
	}
}

func TestHomeBanner(t *testing.T) {
	t.Parallel()

	h := &Handler{available: []string{"crop_recommendation", "crop_yield"}}
	w := doJSON(t, router(h), http.MethodGet, "/", nil)
	body := decodeBody(t, w)
	if body["status"] != "active" || body["version"] != "1.0.0" {
		t.Fatalf("banner = %v", body)
	}
	models, ok := body["models_loaded"].([]any)
	if !ok || len(models) != 2 {
		t.Fatalf("models_loaded = %v", body["models_loaded"])
	}
	endpoints, ok := body["endpoints"].(map[string]any)
	if !ok || endpoints["weather"] != "GET /api/weather/:location" {
		t.Fatalf("endpoints = %v", body["endpoints"])
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	w := doJSON(t, router(h), http.MethodGet, "/api/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false || body["error"] != "Endpoint not found" {
		t.Fatalf("body = %v", body)
	}
}
