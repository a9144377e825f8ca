package registry

import (
	"context"
	"fmt"
)

// CropModel is the crop recommendation handle: two pre-fit scalers applied in
// training order followed by a softmax classifier over 22 crop classes.
type CropModel struct {
	minmax   *minmaxScaler
	standard *standardScaler
	clf      *softmaxClassifier
	classIDs []int
}

func newCropModel(model, minmax, standard *artifact) (*CropModel, error) {
	mm, err := newMinmaxScaler(minmax)
	if err != nil {
		return nil, err
	}
	sc, err := newStandardScaler(standard)
	if err != nil {
		return nil, err
	}
	clf, err := newSoftmaxClassifier(model)
	if err != nil {
		return nil, err
	}
	if len(model.ClassIDs) != len(model.Weights) {
		return nil, fmt.Errorf("crop model: %d class ids for %d classes", len(model.ClassIDs), len(model.Weights))
	}
	return &CropModel{minmax: mm, standard: sc, clf: clf, classIDs: model.ClassIDs}, nil
}

// Predict runs min-max scaling, standard scaling, and the classifier, in that
// order. The order is part of the training contract and not reversible.
func (m *CropModel) Predict(features []float64) (classID int, confidence float64, err error) {
	x, err := m.minmax.transform(features)
	if err != nil {
		return 0, 0, err
	}
	x, err = m.standard.transform(x)
	if err != nil {
		return 0, 0, err
	}
	idx, conf, err := m.clf.predict(x)
	if err != nil {
		return 0, 0, err
	}
	return m.classIDs[idx], conf, nil
}

// YieldInput is the yield regressor's feature row in training column order.
type YieldInput struct {
	Year       int
	Rainfall   float64
	Pesticides float64
	AvgTemp    float64
	Area       string
	Item       string
}

// YieldModel is the crop yield handle: a bound preprocessor (one-hot Area and
// Item vocabularies plus numeric scaling) feeding a regressor.
type YieldModel struct {
	areas    []string
	items    []string
	scaler   *standardScaler
	reg      *linearRegressor
}

func newYieldModel(pipeline *artifact) (*YieldModel, error) {
	if pipeline.Scaler == nil || pipeline.Estimator == nil {
		return nil, fmt.Errorf("yield pipeline %s: missing scaler or estimator stage", pipeline.Name)
	}
	sc, err := newStandardScaler(pipeline.Scaler)
	if err != nil {
		return nil, err
	}
	reg, err := newLinearRegressor(pipeline.Estimator)
	if err != nil {
		return nil, err
	}
	areas := pipeline.Categories["Area"]
	items := pipeline.Categories["Item"]
	if len(areas) == 0 || len(items) == 0 {
		return nil, fmt.Errorf("yield pipeline %s: missing Area or Item vocabulary", pipeline.Name)
	}
	if want := len(areas) + len(items) + len(sc.mean); len(reg.weights) != want {
		return nil, fmt.Errorf("yield pipeline %s: regressor width %d, encoded width %d", pipeline.Name, len(reg.weights), want)
	}
	return &YieldModel{areas: areas, items: items, scaler: sc, reg: reg}, nil
}

// Predict encodes the mixed numeric/categorical row the way the training
// pipeline did (one-hot vocabularies first, scaled numerics after) and
// evaluates the regressor. Unknown Area or Item values encode to zeros.
func (m *YieldModel) Predict(in YieldInput) (float64, error) {
	numeric, err := m.scaler.transform([]float64{float64(in.Year), in.Rainfall, in.Pesticides, in.AvgTemp})
	if err != nil {
		return 0, err
	}

	x := make([]float64, 0, len(m.areas)+len(m.items)+len(numeric))
	x = append(x, oneHot(in.Area, m.areas)...)
	x = append(x, oneHot(in.Item, m.items)...)
	x = append(x, numeric...)

	return m.reg.predict(x)
}

// FertilizerInput is the fertilizer classifier's feature row in training
// column order.
type FertilizerInput struct {
	Temperature float64
	Humidity    float64
	Moisture    float64
	SoilType    string
	CropType    string
	Nitrogen    float64
	Potassium   float64
	Phosphorous float64
}

// FertilizerModel is the fertilizer handle: a bound pipeline that one-hot
// encodes Soil Type and Crop Type, scales the full encoded vector, and runs a
// softmax classifier over fertilizer names.
type FertilizerModel struct {
	soilTypes []string
	cropTypes []string
	scaler    *standardScaler
	clf       *softmaxClassifier
	classes   []string
}

func newFertilizerModel(pipeline *artifact) (*FertilizerModel, error) {
	if pipeline.Scaler == nil || pipeline.Estimator == nil {
		return nil, fmt.Errorf("fertilizer pipeline %s: missing scaler or estimator stage", pipeline.Name)
	}
	sc, err := newStandardScaler(pipeline.Scaler)
	if err != nil {
		return nil, err
	}
	clf, err := newSoftmaxClassifier(pipeline.Estimator)
	if err != nil {
		return nil, err
	}
	soil := pipeline.Categories["Soil Type"]
	crop := pipeline.Categories["Crop Type"]
	if len(soil) == 0 || len(crop) == 0 {
		return nil, fmt.Errorf("fertilizer pipeline %s: missing Soil Type or Crop Type vocabulary", pipeline.Name)
	}
	classes := pipeline.Estimator.ClassNames
	if len(classes) != len(pipeline.Estimator.Weights) {
		return nil, fmt.Errorf("fertilizer pipeline %s: %d class names for %d classes", pipeline.Name, len(classes), len(pipeline.Estimator.Weights))
	}
	if want := len(soil) + len(crop) + 6; len(sc.mean) != want {
		return nil, fmt.Errorf("fertilizer pipeline %s: scaler width %d, encoded width %d", pipeline.Name, len(sc.mean), want)
	}
	return &FertilizerModel{soilTypes: soil, cropTypes: crop, scaler: sc, clf: clf, classes: classes}, nil
}

// Predict encodes, scales, and classifies, returning the fertilizer name and
// the winning class probability.
func (m *FertilizerModel) Predict(in FertilizerInput) (string, float64, error) {
	x := make([]float64, 0, len(m.soilTypes)+len(m.cropTypes)+6)
	x = append(x, oneHot(in.SoilType, m.soilTypes)...)
	x = append(x, oneHot(in.CropType, m.cropTypes)...)
	x = append(x, in.Temperature, in.Humidity, in.Moisture, in.Nitrogen, in.Potassium, in.Phosphorous)

	x, err := m.scaler.transform(x)
	if err != nil {
		return "", 0, err
	}
	idx, conf, err := m.clf.predict(x)
	if err != nil {
		return "", 0, err
	}
	return m.classes[idx], conf, nil
}

// DiseaseModel is the disease detection handle. The TFLite network cannot be
// evaluated in-process, so invocation goes through an external bridge command
// that receives the preprocessed tensor on stdin and returns class
// probabilities on stdout.
type DiseaseModel struct {
	modelPath string
	command   []string
}

// Predict runs the bridge on a preprocessed 225x225x3 tensor and returns the
// winning class index and its probability.
func (m *DiseaseModel) Predict(ctx context.Context, tensor []float32) (classIdx int, confidence float64, err error) {
	probs, err := runBridge(ctx, m.command, bridgeRequest{
		ModelPath: m.modelPath,
		Input:     tensor,
		Shape:     []int{1, imageSize, imageSize, 3},
	})
	if err != nil {
		return 0, 0, err
	}
	if len(probs) == 0 {
		return 0, 0, fmt.Errorf("bridge returned no probabilities")
	}

	best, bestProb := 0, float32(-1)
	for i, p := range probs {
		if p > bestProb {
			best, bestProb = i, p
		}
	}
	return best, float64(bestProb), nil
}
