package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/advisory"
	"github.com/hingan-ai/agri-api/internal/metrics"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
)

// The field names mirror the training data columns exactly, including the
// misspelled "Temparature" and the trailing space in "Humidity ".
var fertilizerRequiredFields = []string{
	"Temparature", "Humidity ", "Moisture", "Soil Type", "Crop Type",
	"Nitrogen", "Potassium", "Phosphorous",
}

// FertilizerRecommendation recommends a fertilizer for the given soil and
// crop conditions.
func (h *Handler) FertilizerRecommendation(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	if name, missing := firstMissing(body, fertilizerRequiredFields); missing {
		errorJSON(c, http.StatusBadRequest, "Missing field: "+name)
		return
	}

	if h.fertilizer == nil {
		errorJSON(c, http.StatusInternalServerError, "Fertilizer model not available")
		return
	}

	numeric := map[string]float64{}
	for _, name := range []string{"Temparature", "Humidity ", "Moisture", "Nitrogen", "Potassium", "Phosphorous"} {
		v, err := asFloat(body[name])
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, err.Error())
			return
		}
		numeric[name] = v
	}
	soilType := asString(body["Soil Type"])
	cropType := asString(body["Crop Type"])

	start := time.Now()
	fertilizer, confidence, err := h.fertilizer.Predict(registry.FertilizerInput{
		Temperature: numeric["Temparature"],
		Humidity:    numeric["Humidity "],
		Moisture:    numeric["Moisture"],
		SoilType:    soilType,
		CropType:    cropType,
		Nitrogen:    numeric["Nitrogen"],
		Potassium:   numeric["Potassium"],
		Phosphorous: numeric["Phosphorous"],
	})
	if err != nil {
		metrics.ObservePrediction("fertilizer", "error", time.Since(start))
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.ObservePrediction("fertilizer", "success", time.Since(start))

	advice := h.kb.FertilizerAdvice(fertilizer, advisory.Conditions{
		Nitrogen:    numeric["Nitrogen"],
		Phosphorous: numeric["Phosphorous"],
		Potassium:   numeric["Potassium"],
		CropType:    cropType,
		SoilType:    soilType,
		Temperature: numeric["Temparature"],
		Humidity:    numeric["Humidity "],
	})

	h.persist(c.Request.Context(), store.TableFertilizer, userID(body), map[string]any{
		"temperature":            numeric["Temparature"],
		"humidity":               numeric["Humidity "],
		"moisture":               numeric["Moisture"],
		"soil_type":              soilType,
		"crop_type":              cropType,
		"nitrogen":               numeric["Nitrogen"],
		"potassium":              numeric["Potassium"],
		"phosphorous":            numeric["Phosphorous"],
		"recommended_fertilizer": fertilizer,
		"confidence_score":       confidence,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"recommended_fertilizer": fertilizer,
		"confidence":             confidence,
		"advice":                 advice,
		"soil_analysis": gin.H{
			"nitrogen":    numeric["Nitrogen"],
			"phosphorous": numeric["Phosphorous"],
			"potassium":   numeric["Potassium"],
			"soil_type":   soilType,
			"moisture":    numeric["Moisture"],
		},
		"conditions": gin.H{
			"temperature": numeric["Temparature"],
			"humidity":    numeric["Humidity "],
			"crop_type":   cropType,
		},
	})
}
