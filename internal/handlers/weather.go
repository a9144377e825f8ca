package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/weather"
)

// Weather proxies current conditions for a location.
func (h *Handler) Weather(c *gin.Context) {
	if h.weather == nil || !h.weather.Configured() {
		errorJSON(c, http.StatusInternalServerError, "Weather API key not configured")
		return
	}

	report, err := h.weather.Current(c.Request.Context(), c.Param("location"))
	if err != nil {
		if errors.Is(err, weather.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "Location not found")
			return
		}
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"location":       report.Location,
		"country":        report.Country,
		"temperature":    report.Temperature,
		"feels_like":     report.FeelsLike,
		"humidity":       report.Humidity,
		"pressure":       report.Pressure,
		"description":    report.Description,
		"icon":           report.Icon,
		"wind_speed":     report.WindSpeed,
		"wind_direction": report.WindDirection,
		"visibility":     report.VisibilityKm,
		"timestamp":      report.Timestamp,
	})
}
