package scoring

import "fmt"

// LinearExplainer is fit at training time against the transformed feature
// space of one specific pipeline. Each attribution is coef_i * (x_i - E[x_i])
// in log-odds units, where E[x] is the training background mean.
type LinearExplainer struct {
	Coef      []float64 `json:"coef" validate:"required,min=1"`
	Intercept float64   `json:"intercept"`
	Expected  []float64 `json:"expected" validate:"required,min=1"`
}

var _ Explainer = (*LinearExplainer)(nil)

func (e *LinearExplainer) Space() Space { return SpaceTransformed }

func (e *LinearExplainer) Width() int { return len(e.Coef) }

// ExpectedValue is the model output at the background mean.
func (e *LinearExplainer) ExpectedValue() float64 {
	return dot(e.Coef, e.Expected) + e.Intercept
}

func (e *LinearExplainer) Validate() error {
	if len(e.Expected) != len(e.Coef) {
		return fmt.Errorf("%w: %d coefficients, %d expected values", ErrShapeMismatch, len(e.Coef), len(e.Expected))
	}
	return nil
}

func (e *LinearExplainer) Attributions(_ Model, _ AlignedRecord, x []float64) (any, error) {
	if len(x) != len(e.Coef) {
		return nil, fmt.Errorf("%w: got %d features, explainer fit on %d", ErrShapeMismatch, len(x), len(e.Coef))
	}
	phi := make([]float64, len(x))
	for i := range x {
		phi[i] = e.Coef[i] * (x[i] - e.Expected[i])
	}
	return phi, nil
}
