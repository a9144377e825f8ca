// Package registry loads exported model artifacts from disk and exposes
// typed prediction handles for the four models the service runs.
package registry

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names inside the models directory. The names are fixed by the
// training export step.
const (
	cropModelFile      = "crop_model.json"
	cropMinmaxFile     = "crop_minmax.json"
	cropScalerFile     = "crop_scaler.json"
	diseaseModelFile   = "disease_model.tflite"
	yieldPipelineFile  = "yield_pipeline.json"
	fertilizerPipeFile = "fertilizer_pipeline.json"
)

// Options configures artifact loading.
type Options struct {
	// Dir is the directory holding exported model artifacts.
	Dir string

	// DiseaseBridgeCmd is the command line that evaluates the TFLite disease
	// network, e.g. "python3 scripts/tflite_bridge.py". Empty disables the
	// disease model.
	DiseaseBridgeCmd string

	// DiseaseTimeout bounds a single bridge invocation.
	DiseaseTimeout time.Duration
}

// Registry holds the loaded model handles. A nil handle means that model's
// artifacts were missing or malformed at startup; the corresponding endpoint
// reports the model as unavailable rather than the whole process failing.
type Registry struct {
	crop       *CropModel
	yield      *YieldModel
	fertilizer *FertilizerModel
	disease    *DiseaseModel

	diseaseTimeout time.Duration
}

// Load reads every artifact it can find under opts.Dir. Individual load
// failures are logged and skipped.
func Load(opts Options) *Registry {
	r := &Registry{diseaseTimeout: opts.DiseaseTimeout}

	if _, err := os.Stat(opts.Dir); os.IsNotExist(err) {
		log.Printf("Models directory does not exist: %s", opts.Dir)
		return r
	}
	log.Printf("Loading model artifacts from: %s", opts.Dir)

	if m, err := loadCropModel(opts.Dir); err != nil {
		log.Printf("Crop recommendation model unavailable: %v", err)
	} else {
		r.crop = m
		log.Printf("Loaded model: crop_recommendation")
	}

	if m, err := loadYieldModel(opts.Dir); err != nil {
		log.Printf("Crop yield model unavailable: %v", err)
	} else {
		r.yield = m
		log.Printf("Loaded model: crop_yield")
	}

	if m, err := loadFertilizerModel(opts.Dir); err != nil {
		log.Printf("Fertilizer model unavailable: %v", err)
	} else {
		r.fertilizer = m
		log.Printf("Loaded model: fertilizer_recommendation")
	}

	if m, err := loadDiseaseModel(opts.Dir, opts.DiseaseBridgeCmd); err != nil {
		log.Printf("Disease detection model unavailable: %v", err)
	} else {
		r.disease = m
		log.Printf("Loaded model: disease_detection")
	}

	return r
}

func loadCropModel(dir string) (*CropModel, error) {
	model, err := loadArtifact(filepath.Join(dir, cropModelFile))
	if err != nil {
		return nil, err
	}
	minmax, err := loadArtifact(filepath.Join(dir, cropMinmaxFile))
	if err != nil {
		return nil, err
	}
	scaler, err := loadArtifact(filepath.Join(dir, cropScalerFile))
	if err != nil {
		return nil, err
	}
	return newCropModel(model, minmax, scaler)
}

func loadYieldModel(dir string) (*YieldModel, error) {
	pipeline, err := loadArtifact(filepath.Join(dir, yieldPipelineFile))
	if err != nil {
		return nil, err
	}
	return newYieldModel(pipeline)
}

func loadFertilizerModel(dir string) (*FertilizerModel, error) {
	pipeline, err := loadArtifact(filepath.Join(dir, fertilizerPipeFile))
	if err != nil {
		return nil, err
	}
	return newFertilizerModel(pipeline)
}

func loadDiseaseModel(dir, bridgeCmd string) (*DiseaseModel, error) {
	path := filepath.Join(dir, diseaseModelFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat model file: %w", err)
	}
	command := parseBridgeCommand(bridgeCmd)
	if len(command) == 0 {
		return nil, fmt.Errorf("no bridge command configured")
	}
	return &DiseaseModel{modelPath: path, command: command}, nil
}

// Crop returns the crop recommendation handle, or nil if unavailable.
func (r *Registry) Crop() *CropModel { return r.crop }

// Yield returns the crop yield handle, or nil if unavailable.
func (r *Registry) Yield() *YieldModel { return r.yield }

// Fertilizer returns the fertilizer handle, or nil if unavailable.
func (r *Registry) Fertilizer() *FertilizerModel { return r.fertilizer }

// Disease returns the disease detection handle, or nil if unavailable.
func (r *Registry) Disease() *DiseaseModel { return r.disease }

// DiseaseTimeout returns the configured per-invocation bridge timeout.
func (r *Registry) DiseaseTimeout() time.Duration { return r.diseaseTimeout }

// Available lists the loaded models by name, for the startup banner and the
// health endpoint.
func (r *Registry) Available() []string {
	out := make([]string, 0, 4)
	if r.crop != nil {
		out = append(out, "crop_recommendation")
	}
	if r.disease != nil {
		out = append(out, "disease_detection")
	}
	if r.yield != nil {
		out = append(out, "crop_yield")
	}
	if r.fertilizer != nil {
		out = append(out, "fertilizer_recommendation")
	}
	return out
}
