package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/metrics"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
)

// Required fields in declared order; the order decides which missing field is
// reported and matches the training-time feature order.
var cropRequiredFields = []string{
	"nitrogen", "phosphorus", "potassium", "temperature", "humidity", "ph", "rainfall",
}

// CropRecommendation predicts the best crop for the given soil and climate
// conditions.
func (h *Handler) CropRecommendation(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	if name, missing := firstMissing(body, cropRequiredFields); missing {
		errorJSON(c, http.StatusBadRequest, "Missing field: "+name)
		return
	}

	features := make([]float64, 0, len(cropRequiredFields))
	for _, name := range cropRequiredFields {
		v, err := asFloat(body[name])
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, err.Error())
			return
		}
		features = append(features, v)
	}

	if h.crop == nil {
		errorJSON(c, http.StatusInternalServerError, "Crop recommendation model not available")
		return
	}

	start := time.Now()
	classID, confidence, err := h.crop.Predict(features)
	if err != nil {
		metrics.ObservePrediction("crop", "error", time.Since(start))
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	crop, ok := registry.CropNames[classID]
	if !ok {
		metrics.ObservePrediction("crop", "soft_failure", time.Since(start))
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Could not determine the best crop with the provided data.",
		})
		return
	}
	metrics.ObservePrediction("crop", "success", time.Since(start))

	n, p, k := features[0], features[1], features[2]
	temp, humidity, ph, rainfall := features[3], features[4], features[5], features[6]

	h.persist(c.Request.Context(), store.TableCrop, userID(body), map[string]any{
		"nitrogen":         n,
		"phosphorus":       p,
		"potassium":        k,
		"temperature":      temp,
		"humidity":         humidity,
		"ph_level":         ph,
		"rainfall":         rainfall,
		"recommended_crop": crop,
		"confidence_score": confidence,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"recommended_crop": crop,
		"confidence":       confidence,
		"message":          fmt.Sprintf("%s is the best crop for these conditions", crop),
		"advice": fmt.Sprintf(
			"Based on your soil conditions (N:%v, P:%v, K:%v) and climate (temp:%v°C, humidity:%v%%, pH:%v, rainfall:%vmm), %s is recommended with %.1f%% confidence.",
			n, p, k, temp, humidity, ph, rainfall, crop, confidence*100),
	})
}
