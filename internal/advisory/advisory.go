// Package advisory holds the static agronomy knowledge base: treatment
// guidance per detected disease, fertilizer product information, and the
// pure functions that derive severity and soil commentary from predictions.
package advisory

import (
	"embed"
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"
)

//go:embed data/treatments.yaml data/fertilizers.yaml
var dataFS embed.FS

// Product is a recommended treatment product for a disease.
type Product struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Application string `json:"application"`
}

// Treatment bundles advice, products, and prevention tips for a disease.
type Treatment struct {
	Advice     string    `json:"advice"`
	Products   []Product `json:"products"`
	Prevention []string  `json:"prevention"`
}

// FertilizerInfo describes a fertilizer product.
type FertilizerInfo struct {
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Application string `json:"application"`
}

// Conditions carries the request inputs the fertilizer advisory echoes back.
type Conditions struct {
	Nitrogen    float64
	Phosphorous float64
	Potassium   float64
	CropType    string
	SoilType    string
	Temperature float64
	Humidity    float64
}

// KnowledgeBase is an immutable set of advisory lookup tables.
type KnowledgeBase struct {
	treatments  map[string]Treatment
	fertilizers map[string]FertilizerInfo
}

// Load parses the embedded advisory tables.
func Load() (*KnowledgeBase, error) {
	kb := &KnowledgeBase{}

	raw, err := dataFS.ReadFile("data/treatments.yaml")
	if err != nil {
		return nil, fmt.Errorf("read treatments: %w", err)
	}
	if err := yaml.Unmarshal(raw, &kb.treatments); err != nil {
		return nil, fmt.Errorf("parse treatments: %w", err)
	}

	raw, err = dataFS.ReadFile("data/fertilizers.yaml")
	if err != nil {
		return nil, fmt.Errorf("read fertilizers: %w", err)
	}
	if err := yaml.Unmarshal(raw, &kb.fertilizers); err != nil {
		return nil, fmt.Errorf("parse fertilizers: %w", err)
	}

	return kb, nil
}

// Treatment returns the guidance for a disease label. Unknown labels resolve
// to a generic entry, never an error.
func (kb *KnowledgeBase) Treatment(disease string) Treatment {
	if t, ok := kb.treatments[disease]; ok {
		return t
	}
	return Treatment{
		Advice:   "Disease detected. Consult with agricultural extension services for proper diagnosis and treatment.",
		Products: []Product{},
		Prevention: []string{
			"Maintain good plant hygiene",
			"Monitor plants regularly",
		},
	}
}

// Fertilizer returns product information for a fertilizer name. Unknown names
// resolve to a generic entry.
func (kb *KnowledgeBase) Fertilizer(name string) FertilizerInfo {
	if info, ok := kb.fertilizers[name]; ok {
		return info
	}
	return FertilizerInfo{
		Description: fmt.Sprintf("%s fertilizer", name),
		Usage:       "Follow manufacturer guidelines",
		Application: "Apply according to crop requirements",
	}
}

// Severity derives a severity level from the classifier confidence and the
// detected disease.
func Severity(disease string, confidence float64) string {
	switch {
	case disease == "Healthy":
		return "Good"
	case confidence > 0.8:
		if disease == "Powdery" || disease == "Rust" {
			return "High"
		}
		return "Medium"
	case confidence > 0.6:
		return "Medium"
	default:
		return "Low"
	}
}

// Soil-nutrient tier thresholds fixed by the agronomy guidance tables.
func nitrogenLine(n float64) string {
	switch {
	case n < 20:
		return "Low nitrogen detected - this fertilizer will help boost leaf growth"
	case n > 50:
		return "High nitrogen levels - monitor to prevent excessive vegetative growth"
	default:
		return "Nitrogen levels are adequate"
	}
}

func phosphorousLine(p float64) string {
	switch {
	case p < 15:
		return "Low phosphorus - will improve root development and flowering"
	case p > 40:
		return "Good phosphorus levels - maintain current status"
	default:
		return "Moderate phosphorus levels"
	}
}

func potassiumLine(k float64) string {
	switch {
	case k < 20:
		return "Low potassium - will enhance disease resistance and fruit quality"
	case k > 50:
		return "Excellent potassium levels"
	default:
		return "Moderate potassium levels"
	}
}

// FertilizerAdvice composes the full multi-line advisory for a recommended
// fertilizer and the soil/climate conditions it was derived from.
func (kb *KnowledgeBase) FertilizerAdvice(name string, cond Conditions) string {
	info := kb.Fertilizer(name)

	var b strings.Builder
	fmt.Fprintf(&b, "Recommended Fertilizer: %s\n\n", name)
	fmt.Fprintf(&b, "Description: %s\n", info.Description)
	fmt.Fprintf(&b, "Usage: %s\n", info.Usage)
	fmt.Fprintf(&b, "Application: %s\n\n", info.Application)

	b.WriteString("Soil Analysis Recommendations:\n")
	fmt.Fprintf(&b, "- %s\n", nitrogenLine(cond.Nitrogen))
	fmt.Fprintf(&b, "- %s\n", phosphorousLine(cond.Phosphorous))
	fmt.Fprintf(&b, "- %s\n", potassiumLine(cond.Potassium))

	fmt.Fprintf(&b, "\nCrop: %s | Soil: %s\n", cond.CropType, cond.SoilType)
	fmt.Fprintf(&b, "Temperature: %g°C | Humidity: %g%%\n", cond.Temperature, cond.Humidity)

	return b.String()
}
