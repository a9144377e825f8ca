package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Model artifacts are JSON manifests exported offline by the training
// pipeline. Every manifest is schema-checked before the handle is built so a
// truncated or hand-edited file is skipped instead of producing garbage
// predictions.
const artifactSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "type"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "type": {"type": "string", "enum": ["minmax_scaler", "standard_scaler", "softmax_classifier", "linear_regressor", "column_pipeline"]}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "minmax_scaler"}}},
      "then": {"required": ["min", "range"]}
    },
    {
      "if": {"properties": {"type": {"const": "standard_scaler"}}},
      "then": {"required": ["mean", "std"]}
    },
    {
      "if": {"properties": {"type": {"const": "softmax_classifier"}}},
      "then": {"required": ["weights", "bias"]}
    },
    {
      "if": {"properties": {"type": {"const": "linear_regressor"}}},
      "then": {"required": ["weights", "intercept"]}
    }
  ]
}`

var schemaLoader = gojsonschema.NewStringLoader(artifactSchema)

// artifact is the superset of fields an exported manifest can carry. Which
// fields are populated depends on the manifest type.
type artifact struct {
	Name string `json:"name"`
	Type string `json:"type"`

	// Scalers
	Min   []float64 `json:"min,omitempty"`
	Range []float64 `json:"range,omitempty"`
	Mean  []float64 `json:"mean,omitempty"`
	Std   []float64 `json:"std,omitempty"`

	// Classifier / regressor parameters
	Weights   [][]float64 `json:"weights,omitempty"`
	Bias      []float64   `json:"bias,omitempty"`
	Intercept float64     `json:"intercept"`

	// Class enumeration: integer IDs for the crop model, names for the
	// fertilizer model.
	ClassIDs   []int    `json:"class_ids,omitempty"`
	ClassNames []string `json:"class_names,omitempty"`

	// Categorical vocabularies for column pipelines, in training order.
	Categories map[string][]string `json:"categories,omitempty"`

	// Nested stages for column pipelines.
	Scaler    *artifact `json:"scaler,omitempty"`
	Estimator *artifact `json:"estimator,omitempty"`
}

// loadArtifact reads and schema-checks a manifest file.
func loadArtifact(path string) (*artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema check failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid artifact manifest: %s", strings.Join(msgs, "; "))
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}
