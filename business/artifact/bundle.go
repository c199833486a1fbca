package artifact

import (
	"fmt"
	"slices"
	"time"

	"fairFin/business/scoring"
)

// Bundle is one model version with everything needed to score and explain.
// Explainer, Schema and FeatureNames are optional.
type Bundle struct {
	Version      string
	Token        string
	Model        *scoring.LogisticPipeline
	Explainer    *scoring.LinearExplainer
	Schema       *scoring.FeatureSchema
	FeatureNames []string
	LoadedAt     time.Time

	// Warnings lists optional artifacts that were absent or dropped.
	Warnings []string
}

type Info struct {
	Version       string    `json:"version"`
	Token         string    `json:"token"`
	ModelWidth    int       `json:"model_width"`
	HasExplainer  bool      `json:"has_explainer"`
	HasSchema     bool      `json:"has_schema"`
	SchemaColumns int       `json:"schema_columns"`
	FeatureNames  int       `json:"feature_names"`
	LoadedAt      time.Time `json:"loaded_at"`
	Warnings      []string  `json:"warnings,omitempty"`
}

func (b *Bundle) Info() Info {
	return Info{
		Version:       b.Version,
		Token:         b.Token,
		ModelWidth:    b.Model.Width(),
		HasExplainer:  b.Explainer != nil,
		HasSchema:     b.Schema.Known(),
		SchemaColumns: b.Schema.Width(),
		FeatureNames:  len(b.FeatureNames),
		LoadedAt:      b.LoadedAt,
		Warnings:      b.Warnings,
	}
}

// IncompatibleArtifactsError rejects a bundle whose parts were not produced
// together.
type IncompatibleArtifactsError struct {
	Version string
	Reason  string
}

func (e *IncompatibleArtifactsError) Error() string {
	return fmt.Sprintf("incompatible artifacts for version %q: %s", e.Version, e.Reason)
}

// checkExplainer verifies the explainer was fit against this exact model.
func (b *Bundle) checkExplainer(e *scoring.LinearExplainer, token string) error {
	if token != b.Token {
		return &IncompatibleArtifactsError{
			Version: b.Version,
			Reason:  fmt.Sprintf("explainer fit on model %s, loaded model is %s", short(token), short(b.Token)),
		}
	}
	if e.Width() != b.Model.Width() {
		return &IncompatibleArtifactsError{
			Version: b.Version,
			Reason:  fmt.Sprintf("explainer width %d, model width %d", e.Width(), b.Model.Width()),
		}
	}
	return nil
}

func (b *Bundle) checkFeatureNames(names []string) error {
	if len(names) != b.Model.Width() {
		return &IncompatibleArtifactsError{
			Version: b.Version,
			Reason:  fmt.Sprintf("%d feature names for model width %d", len(names), b.Model.Width()),
		}
	}
	return nil
}

func (b *Bundle) checkSchema(s *scoring.FeatureSchema) error {
	if !slices.Equal(s.Numerical, b.Model.Scaler.Columns) || !slices.Equal(s.Categorical, b.Model.Encoder.Columns) {
		return &IncompatibleArtifactsError{
			Version: b.Version,
			Reason:  "schema columns differ from the model's preprocessing columns",
		}
	}
	return nil
}

func short(token string) string {
	if len(token) > 12 {
		return token[:12]
	}
	return token
}
