package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Model is a trained classifier behind its own preprocessing. Implementations
// must be safe for concurrent use once loaded.
type Model interface {
	// Transform turns an aligned record into the model's numeric input.
	Transform(rec AlignedRecord) ([]float64, error)
	// PredictProba returns the likelihood of the approved outcome.
	PredictProba(x []float64) (float64, error)
	// Predict returns the model's own decision for x.
	Predict(x []float64) (int, error)
	// FeatureNames labels the transformed columns. Nil when unknown.
	FeatureNames() []string
}

// StandardScaler centers and scales numeric columns.
type StandardScaler struct {
	Columns []string  `json:"columns" validate:"dive,required"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// OneHotEncoder expands each categorical column into one indicator per
// known category. Unknown labels encode to an all-zero block.
type OneHotEncoder struct {
	Columns    []string   `json:"columns" validate:"dive,required"`
	Categories [][]string `json:"categories"`
}

type LogisticRegression struct {
	Coef      []float64 `json:"coef" validate:"required,min=1"`
	Intercept float64   `json:"intercept"`
}

// LogisticPipeline is scaler + encoder feeding a logistic regression.
type LogisticPipeline struct {
	Scaler     StandardScaler     `json:"scaler"`
	Encoder    OneHotEncoder      `json:"encoder"`
	Classifier LogisticRegression `json:"classifier"`

	names []string
}

var _ Model = (*LogisticPipeline)(nil)

// Width is the transformed vector length.
func (p *LogisticPipeline) Width() int {
	w := len(p.Scaler.Columns)
	for _, cats := range p.Encoder.Categories {
		w += len(cats)
	}
	return w
}

// Columns lists the raw columns the pipeline consumes, numeric first.
func (p *LogisticPipeline) Columns() []string {
	cols := make([]string, 0, len(p.Scaler.Columns)+len(p.Encoder.Columns))
	cols = append(cols, p.Scaler.Columns...)
	return append(cols, p.Encoder.Columns...)
}

// Validate checks the internal shape of the pipeline.
func (p *LogisticPipeline) Validate() error {
	if len(p.Scaler.Mean) != len(p.Scaler.Columns) || len(p.Scaler.Scale) != len(p.Scaler.Columns) {
		return fmt.Errorf("%w: scaler has %d columns, %d means, %d scales", ErrShapeMismatch,
			len(p.Scaler.Columns), len(p.Scaler.Mean), len(p.Scaler.Scale))
	}
	if len(p.Encoder.Categories) != len(p.Encoder.Columns) {
		return fmt.Errorf("%w: encoder has %d columns, %d category lists", ErrShapeMismatch,
			len(p.Encoder.Columns), len(p.Encoder.Categories))
	}
	if len(p.Classifier.Coef) != p.Width() {
		return fmt.Errorf("%w: classifier has %d coefficients for width %d", ErrShapeMismatch,
			len(p.Classifier.Coef), p.Width())
	}
	return nil
}

// DerivedFeatureNames builds "<num>" and "<cat>_<level>" labels from the
// fitted preprocessing.
func (p *LogisticPipeline) DerivedFeatureNames() []string {
	names := make([]string, 0, p.Width())
	names = append(names, p.Scaler.Columns...)
	for i, col := range p.Encoder.Columns {
		for _, level := range p.Encoder.Categories[i] {
			names = append(names, col+"_"+level)
		}
	}
	return names
}

// SetFeatureNames attaches display names. Call before sharing the pipeline.
func (p *LogisticPipeline) SetFeatureNames(names []string) {
	p.names = names
}

func (p *LogisticPipeline) FeatureNames() []string {
	return p.names
}

func (p *LogisticPipeline) Transform(rec AlignedRecord) ([]float64, error) {
	x := make([]float64, 0, p.Width())

	for i, col := range p.Scaler.Columns {
		v, ok := rec.Get(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		scale := p.Scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		x = append(x, (f-p.Scaler.Mean[i])/scale)
	}

	for i, col := range p.Encoder.Columns {
		v, ok := rec.Get(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		label, err := toLabel(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		for _, level := range p.Encoder.Categories[i] {
			if level == label {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}

	return x, nil
}

// DecisionFunction returns the log-odds of approval.
func (p *LogisticPipeline) DecisionFunction(x []float64) (float64, error) {
	if len(x) != len(p.Classifier.Coef) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), len(p.Classifier.Coef))
	}
	return dot(p.Classifier.Coef, x) + p.Classifier.Intercept, nil
}

func (p *LogisticPipeline) PredictProba(x []float64) (float64, error) {
	z, err := p.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(z), nil
}

// Predict follows the classifier's own boundary: positive log-odds approve.
func (p *LogisticPipeline) Predict(x []float64) (int, error) {
	z, err := p.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUntransformable, t)
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrUntransformable, t)
		}
		f = n
	default:
		return 0, fmt.Errorf("%w: %T", ErrUntransformable, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrUntransformable, f)
	}
	return f, nil
}

// toLabel renders a categorical value. Numbers are formatted so a numeric
// default simply misses every known category.
func toLabel(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		f, err := toFloat(t)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUntransformable, v)
	}
}
