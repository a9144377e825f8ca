package registry

import (
	"fmt"
	"math"
)

// minmaxScaler rescales each feature into the unit interval using the
// training-time minimum and range.
type minmaxScaler struct {
	min []float64
	rng []float64
}

func newMinmaxScaler(a *artifact) (*minmaxScaler, error) {
	if len(a.Min) != len(a.Range) {
		return nil, fmt.Errorf("minmax scaler %s: min/range length mismatch (%d vs %d)", a.Name, len(a.Min), len(a.Range))
	}
	return &minmaxScaler{min: a.Min, rng: a.Range}, nil
}

func (s *minmaxScaler) transform(x []float64) ([]float64, error) {
	if len(x) != len(s.min) {
		return nil, fmt.Errorf("minmax scaler expects %d features, got %d", len(s.min), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if s.rng[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - s.min[i]) / s.rng[i]
	}
	return out, nil
}

// standardScaler centers and scales each feature with training-time mean and
// standard deviation.
type standardScaler struct {
	mean []float64
	std  []float64
}

func newStandardScaler(a *artifact) (*standardScaler, error) {
	if len(a.Mean) != len(a.Std) {
		return nil, fmt.Errorf("standard scaler %s: mean/std length mismatch (%d vs %d)", a.Name, len(a.Mean), len(a.Std))
	}
	return &standardScaler{mean: a.Mean, std: a.Std}, nil
}

func (s *standardScaler) transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("standard scaler expects %d features, got %d", len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if s.std[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - s.mean[i]) / s.std[i]
	}
	return out, nil
}

// softmaxClassifier evaluates an exported multinomial classifier: one weight
// row per class, softmax over the scores.
type softmaxClassifier struct {
	weights [][]float64
	bias    []float64
}

func newSoftmaxClassifier(a *artifact) (*softmaxClassifier, error) {
	if len(a.Weights) == 0 || len(a.Weights) != len(a.Bias) {
		return nil, fmt.Errorf("classifier %s: weights/bias shape mismatch (%d vs %d)", a.Name, len(a.Weights), len(a.Bias))
	}
	width := len(a.Weights[0])
	for i, row := range a.Weights {
		if len(row) != width {
			return nil, fmt.Errorf("classifier %s: ragged weight row %d", a.Name, i)
		}
	}
	return &softmaxClassifier{weights: a.Weights, bias: a.Bias}, nil
}

// predict returns the winning class index and its probability.
func (c *softmaxClassifier) predict(x []float64) (int, float64, error) {
	if len(x) != len(c.weights[0]) {
		return 0, 0, fmt.Errorf("classifier expects %d features, got %d", len(c.weights[0]), len(x))
	}

	scores := make([]float64, len(c.weights))
	maxScore := math.Inf(-1)
	for i, row := range c.weights {
		s := c.bias[i]
		for j, w := range row {
			s += w * x[j]
		}
		scores[i] = s
		if s > maxScore {
			maxScore = s
		}
	}

	// Softmax with the max subtracted for numeric stability.
	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - maxScore)
		sum += scores[i]
	}

	best, bestProb := 0, 0.0
	for i, s := range scores {
		p := s / sum
		if p > bestProb {
			best, bestProb = i, p
		}
	}
	return best, bestProb, nil
}

// linearRegressor evaluates an exported regression model.
type linearRegressor struct {
	weights   []float64
	intercept float64
}

func newLinearRegressor(a *artifact) (*linearRegressor, error) {
	if len(a.Weights) != 1 || len(a.Weights[0]) == 0 {
		return nil, fmt.Errorf("regressor %s: expected a single weight row", a.Name)
	}
	return &linearRegressor{weights: a.Weights[0], intercept: a.Intercept}, nil
}

func (r *linearRegressor) predict(x []float64) (float64, error) {
	if len(x) != len(r.weights) {
		return 0, fmt.Errorf("regressor expects %d features, got %d", len(r.weights), len(x))
	}
	y := r.intercept
	for i, w := range r.weights {
		y += w * x[i]
	}
	return y, nil
}

// oneHot encodes a categorical value against a training-time vocabulary.
// Unknown values encode to all zeros, matching handle_unknown="ignore" in the
// exporting pipeline.
func oneHot(value string, vocab []string) []float64 {
	out := make([]float64, len(vocab))
	for i, v := range vocab {
		if v == value {
			out[i] = 1
			break
		}
	}
	return out
}
