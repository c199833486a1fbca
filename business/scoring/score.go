package scoring

import (
	"fmt"
	"math"
)

type Prediction struct {
	Probability float64 `json:"probability"`
	Class       int     `json:"class"`
}

// Approved reports the model's own decision.
func (p Prediction) Approved() bool { return p.Class == 1 }

// Score runs the model on an aligned record. Any failure comes back as a
// *ScoringError; there are no retries.
func Score(model Model, rec AlignedRecord) (Prediction, error) {
	if model == nil {
		return Prediction{}, &ScoringError{Op: "load", Err: ErrModelUnavailable}
	}

	x, err := model.Transform(rec)
	if err != nil {
		return Prediction{}, &ScoringError{Op: "transform", Err: err}
	}

	proba, err := model.PredictProba(x)
	if err != nil {
		return Prediction{}, &ScoringError{Op: "predict_proba", Err: err}
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return Prediction{}, &ScoringError{Op: "predict_proba", Err: fmt.Errorf("probability %v outside [0,1]", proba)}
	}

	class, err := model.Predict(x)
	if err != nil {
		return Prediction{}, &ScoringError{Op: "predict", Err: err}
	}
	if class != 0 && class != 1 {
		return Prediction{}, &ScoringError{Op: "predict", Err: fmt.Errorf("class %d is not binary", class)}
	}

	return Prediction{Probability: proba, Class: class}, nil
}
