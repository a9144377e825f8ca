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

var yieldRequiredFields = []string{
	"Year", "average_rain_fall_mm_per_year", "pesticides_tonnes", "avg_temp", "Area", "Item",
}

// CropYieldPrediction predicts the yield in hg/ha for a crop in a country.
func (h *Handler) CropYieldPrediction(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	if name, missing := firstMissing(body, yieldRequiredFields); missing {
		errorJSON(c, http.StatusBadRequest, "Missing field: "+name)
		return
	}

	if h.yield == nil {
		errorJSON(c, http.StatusInternalServerError, "Crop yield model not available")
		return
	}

	year, err := asInt(body["Year"])
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	rainfall, err := asFloat(body["average_rain_fall_mm_per_year"])
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	pesticides, err := asFloat(body["pesticides_tonnes"])
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	temp, err := asFloat(body["avg_temp"])
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	// Area is a country name, not a number.
	area := asString(body["Area"])
	item := asString(body["Item"])

	start := time.Now()
	predicted, err := h.yield.Predict(registry.YieldInput{
		Year:       year,
		Rainfall:   rainfall,
		Pesticides: pesticides,
		AvgTemp:    temp,
		Area:       area,
		Item:       item,
	})
	if err != nil {
		metrics.ObservePrediction("yield", "error", time.Since(start))
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.ObservePrediction("yield", "success", time.Since(start))

	h.persist(c.Request.Context(), store.TableYield, userID(body), map[string]any{
		"year":                year,
		"average_rainfall":    rainfall,
		"pesticides_usage":    pesticides,
		"average_temperature": temp,
		"area":                area,
		"crop_item":           item,
		"predicted_yield":     predicted,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"predicted_yield": predicted,
		"crop_type":       item,
		"area":            area,
		"message":         fmt.Sprintf("Predicted yield for %s in %s: %.2f hg/ha", item, area, predicted),
		"factors": gin.H{
			"year":            year,
			"rainfall":        rainfall,
			"pesticides_used": pesticides,
			"temperature":     temp,
			"country":         area,
		},
	})
}
