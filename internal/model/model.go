package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// FeatureNames in the order the model was trained with.
var FeatureNames = []string{
	"stock_level",
	"holiday",
	"rain",
	"temperature",
	"days_to_expiry",
	"stock_expiry_ratio",
	"rain_temp_interaction",
}

// FeatureRow is one forecast day's model input.
type FeatureRow struct {
	StockLevel          float64 `json:"stock_level"`
	Holiday             float64 `json:"holiday"`
	Rain                float64 `json:"rain"`
	Temperature         float64 `json:"temperature"`
	DaysToExpiry        float64 `json:"days_to_expiry"`
	StockExpiryRatio    float64 `json:"stock_expiry_ratio"`
	RainTempInteraction float64 `json:"rain_temp_interaction"`
}

// vector returns the row's values in FeatureNames order.
func (r FeatureRow) vector() []float64 {
	return []float64{
		r.StockLevel,
		r.Holiday,
		r.Rain,
		r.Temperature,
		r.DaysToExpiry,
		r.StockExpiryRatio,
		r.RainTempInteraction,
	}
}

// FeatureImpact is one feature's aggregate contribution across a run.
type FeatureImpact struct {
	Feature string  `json:"feature"`
	MeanAbs float64 `json:"mean_abs_contribution"`
}

// Attribution carries per-feature contribution scores for a prediction
// batch. Contributions[i][j] is feature j's effect on row i relative to
// the training baseline.
type Attribution struct {
	Baseline      float64     `json:"baseline"` // Expected multiplier over the training data
	Contributions [][]float64 `json:"contributions"`
}

// Summary ranks features by mean absolute contribution across all rows.
func (a *Attribution) Summary() []FeatureImpact {
	impacts := make([]FeatureImpact, len(FeatureNames))
	for j, name := range FeatureNames {
		var total float64
		for i := range a.Contributions {
			total += math.Abs(a.Contributions[i][j])
		}
		mean := 0.0
		if len(a.Contributions) > 0 {
			mean = total / float64(len(a.Contributions))
		}
		impacts[j] = FeatureImpact{Feature: name, MeanAbs: mean}
	}
	return impacts
}

// Pricer is the narrow contract the forecast workflow depends on: a
// feature row in, one multiplier per row out, plus a feature-attribution
// query for explainability.
type Pricer interface {
	Predict(rows []FeatureRow) ([]float64, error)
	Explain(rows []FeatureRow) (*Attribution, error)
}

// LinearModel is a regression exported to JSON at training time:
// intercept, per-feature coefficients and the training means used as the
// attribution baseline.
type LinearModel struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	Means        map[string]float64 `json:"feature_means"`
}

// Load reads a serialized model from disk and validates that every
// expected feature has a coefficient.
func Load(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	for _, name := range FeatureNames {
		if _, ok := m.Coefficients[name]; !ok {
			return nil, fmt.Errorf("model file missing coefficient for %q", name)
		}
	}
	return &m, nil
}

// Predict returns one price multiplier per feature row.
func (m *LinearModel) Predict(rows []FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		vec := row.vector()
		v := m.Intercept
		for j, name := range FeatureNames {
			v += m.Coefficients[name] * vec[j]
		}
		out[i] = v
	}
	return out, nil
}

// Explain returns exact per-feature contributions: for a linear model
// each feature's effect is coef * (x - training_mean), and the baseline
// is the prediction at the training means.
func (m *LinearModel) Explain(rows []FeatureRow) (*Attribution, error) {
	baseline := m.Intercept
	for _, name := range FeatureNames {
		baseline += m.Coefficients[name] * m.Means[name]
	}
	contribs := make([][]float64, len(rows))
	for i, row := range rows {
		vec := row.vector()
		contribs[i] = make([]float64, len(FeatureNames))
		for j, name := range FeatureNames {
			contribs[i][j] = m.Coefficients[name] * (vec[j] - m.Means[name])
		}
	}
	return &Attribution{Baseline: baseline, Contributions: contribs}, nil
}
