package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hingan-ai/agri-api/internal/advisory"
	"github.com/hingan-ai/agri-api/internal/metrics"
	"github.com/hingan-ai/agri-api/internal/registry"
	"github.com/hingan-ai/agri-api/internal/store"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename strips path components and unsafe characters from an
// uploaded filename before it touches the filesystem.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = uuid.NewString()
	}
	return name
}

// DiseaseDetection classifies a plant disease from an uploaded leaf image.
func (h *Handler) DiseaseDetection(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if file.Filename == "" {
		errorJSON(c, http.StatusBadRequest, "No file selected")
		return
	}
	user := c.PostForm("user_id")

	if h.disease == nil {
		errorJSON(c, http.StatusInternalServerError, "Disease detection model not available")
		return
	}

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	filename := time.Now().Format("20060102_150405") + "_" + sanitizeFilename(file.Filename)
	uploadPath := filepath.Join(h.opts.UploadDir, filename)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	// The upload is removed on every exit path.
	defer os.Remove(uploadPath)

	tensor, err := registry.PrepareImage(uploadPath)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := c.Request.Context()
	if h.opts.DiseaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.DiseaseTimeout)
		defer cancel()
	}

	start := time.Now()
	classIdx, confidence, err := h.disease.Predict(ctx, tensor)
	if err != nil {
		metrics.ObservePrediction("disease", "error", time.Since(start))
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	disease, ok := registry.DiseaseLabels[classIdx]
	if !ok {
		metrics.ObservePrediction("disease", "soft_failure", time.Since(start))
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Could not determine the disease from the provided image.",
		})
		return
	}
	metrics.ObservePrediction("disease", "success", time.Since(start))

	treatment := h.kb.Treatment(disease)

	h.persist(c.Request.Context(), store.TableDisease, user, map[string]any{
		"detected_disease": disease,
		"confidence_score": confidence,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"disease":              disease,
		"confidence":           confidence,
		"treatment_advice":     treatment.Advice,
		"recommended_products": treatment.Products,
		"prevention_tips":      treatment.Prevention,
		"severity":             advisory.Severity(disease, confidence),
	})
}
