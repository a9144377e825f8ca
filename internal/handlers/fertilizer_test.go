package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/hingan-ai/agri-api/internal/store"
)

func fertilizerBody() map[string]any {
	return map[string]any{
		"Temparature": 26.0,
		"Humidity ":   52.0,
		"Moisture":    38.0,
		"Soil Type":   "Loamy",
		"Crop Type":   "Maize",
		"Nitrogen":    10.0,
		"Potassium":   60.0,
		"Phosphorous": 12.0,
	}
}

func TestFertilizerRecommendationSuccess(t *testing.T) {
	t.Parallel()

	model := &fakeFertilizer{name: "DAP", confidence: 0.88}
	st := &fakeStore{}
	h := &Handler{fertilizer: model, kb: loadKB(t), store: st}

	body := fertilizerBody()
	body["user_id"] = "farmer-9"
	w := doJSON(t, router(h), http.MethodPost, "/api/fertilizer-recommendation", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["recommended_fertilizer"] != "DAP" || resp["confidence"] != 0.88 {
		t.Fatalf("response = %v", resp)
	}

	advice, _ := resp["advice"].(string)
	if !strings.Contains(advice, "Diammonium Phosphate") {
		t.Fatalf("advice missing description:\n%s", advice)
	}
	if !strings.Contains(advice, "Low nitrogen") || !strings.Contains(advice, "Low phosphorus") {
		t.Fatalf("advice missing nutrient lines:\n%s", advice)
	}
	if !strings.Contains(advice, "Excellent potassium levels") {
		t.Fatalf("advice missing potassium line:\n%s", advice)
	}

	analysis, ok := resp["soil_analysis"].(map[string]any)
	if !ok || analysis["soil_type"] != "Loamy" || analysis["nitrogen"] != 10.0 {
		t.Fatalf("soil_analysis = %v", resp["soil_analysis"])
	}
	conditions, ok := resp["conditions"].(map[string]any)
	if !ok || conditions["crop_type"] != "Maize" || conditions["humidity"] != 52.0 {
		t.Fatalf("conditions = %v", resp["conditions"])
	}

	// The trailing-space training column feeds the model's humidity input.
	if model.gotInput.Humidity != 52 || model.gotInput.Temperature != 26 {
		t.Fatalf("model input = %+v", model.gotInput)
	}

	if len(st.rows) != 1 || st.rows[0].table != store.TableFertilizer {
		t.Fatalf("rows = %+v", st.rows)
	}
	if st.rows[0].payload["recommended_fertilizer"] != "DAP" {
		t.Fatalf("payload = %v", st.rows[0].payload)
	}
}

func TestFertilizerRecommendationMissingHumidityField(t *testing.T) {
	t.Parallel()

	h := &Handler{fertilizer: &fakeFertilizer{}, kb: loadKB(t)}

	body := fertilizerBody()
	delete(body, "Humidity ")
	// A humidity key without the trailing space does not satisfy the contract.
	body["Humidity"] = 52.0
	w := doJSON(t, router(h), http.MethodPost, "/api/fertilizer-recommendation", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "Missing field: Humidity " {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestFertilizerRecommendationModelUnavailable(t *testing.T) {
	t.Parallel()

	h := &Handler{kb: loadKB(t)}
	w := doJSON(t, router(h), http.MethodPost, "/api/fertilizer-recommendation", fertilizerBody())

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "Fertilizer model not available" {
		t.Fatalf("error = %v", resp["error"])
	}
}
