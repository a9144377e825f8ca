package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/hingan-ai/agri-api/internal/store"
)

func cropBody() map[string]any {
	return map[string]any{
		"nitrogen":    90.0,
		"phosphorus":  42.0,
		"potassium":   43.0,
		"temperature": 20.8,
		"humidity":    82.0,
		"ph":          6.5,
		"rainfall":    202.9,
	}
}

func TestCropRecommendationSuccess(t *testing.T) {
	t.Parallel()

	model := &fakeCrop{classID: 1, confidence: 0.93}
	st := &fakeStore{}
	h := &Handler{crop: model, kb: loadKB(t), store: st}

	body := cropBody()
	body["user_id"] = "farmer-7"
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["success"] != true || resp["recommended_crop"] != "Rice" {
		t.Fatalf("response = %v", resp)
	}
	if resp["message"] != "Rice is the best crop for these conditions" {
		t.Fatalf("message = %v", resp["message"])
	}
	advice, _ := resp["advice"].(string)
	if !strings.Contains(advice, "93.0% confidence") {
		t.Fatalf("advice = %q", advice)
	}

	// Features must reach the model in declared order.
	want := []float64{90, 42, 43, 20.8, 82, 6.5, 202.9}
	for i, v := range want {
		if model.gotInput[i] != v {
			t.Fatalf("feature %d = %v, want %v", i, model.gotInput[i], v)
		}
	}

	if len(st.rows) != 1 {
		t.Fatalf("recorded %d rows, want 1", len(st.rows))
	}
	row := st.rows[0]
	if row.table != store.TableCrop || row.userID != "farmer-7" {
		t.Fatalf("row = %+v", row)
	}
	if row.payload["recommended_crop"] != "Rice" {
		t.Fatalf("payload = %v", row.payload)
	}
}

func TestCropRecommendationFirstMissingFieldWins(t *testing.T) {
	t.Parallel()

	h := &Handler{crop: &fakeCrop{classID: 1, confidence: 0.9}, kb: loadKB(t)}

	body := cropBody()
	delete(body, "phosphorus")
	delete(body, "rainfall")
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "Missing field: phosphorus" {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestCropRecommendationModelUnavailable(t *testing.T) {
	t.Parallel()

	h := &Handler{kb: loadKB(t)}
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", cropBody())

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "Crop recommendation model not available" {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestCropRecommendationOutOfTableClassIsSoftFailure(t *testing.T) {
	t.Parallel()

	h := &Handler{crop: &fakeCrop{classID: 99, confidence: 0.4}, kb: loadKB(t)}
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", cropBody())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, soft failures answer 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["success"] != false {
		t.Fatalf("response = %v", resp)
	}
	if resp["message"] != "Could not determine the best crop with the provided data." {
		t.Fatalf("message = %v", resp["message"])
	}
}

func TestCropRecommendationSkipsPersistWithoutUserID(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	h := &Handler{crop: &fakeCrop{classID: 2, confidence: 0.8}, kb: loadKB(t), store: st}

	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", cropBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(st.rows) != 0 {
		t.Fatalf("recorded %d rows without user_id", len(st.rows))
	}
}

func TestCropRecommendationNumericStringsAccepted(t *testing.T) {
	t.Parallel()

	model := &fakeCrop{classID: 22, confidence: 0.77}
	h := &Handler{crop: model, kb: loadKB(t)}

	body := cropBody()
	body["nitrogen"] = "90.5"
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if model.gotInput[0] != 90.5 {
		t.Fatalf("nitrogen = %v", model.gotInput[0])
	}
	resp := decodeBody(t, w)
	if resp["recommended_crop"] != "Coffee" {
		t.Fatalf("crop = %v", resp["recommended_crop"])
	}
}

func TestCropRecommendationBadNumberIsServerError(t *testing.T) {
	t.Parallel()

	h := &Handler{crop: &fakeCrop{}, kb: loadKB(t)}
	body := cropBody()
	body["ph"] = "acidic"
	w := doJSON(t, router(h), http.MethodPost, "/api/crop-recommendation", body)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
