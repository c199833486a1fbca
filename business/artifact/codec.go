package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"fairFin/business/scoring"

	"github.com/go-playground/validator/v10"
)

const (
	FormatLogisticPipeline = "logistic_pipeline/v1"
	FormatLinearExplainer  = "linear_explainer/v1"
)

var validate = validator.New()

type modelDocument struct {
	Format   string                   `json:"format" validate:"required,eq=logistic_pipeline/v1"`
	Pipeline scoring.LogisticPipeline `json:"pipeline"`
}

// explainerDocument pins the explainer to the model it was fit against.
type explainerDocument struct {
	Format    string                 `json:"format" validate:"required,eq=linear_explainer/v1"`
	Token     string                 `json:"model_token" validate:"required,len=64,hexadecimal"`
	Explainer scoring.LinearExplainer `json:"explainer"`
}

// Fingerprint is the compatibility token of a pipeline: sha256 over its
// canonical JSON encoding.
func Fingerprint(p *scoring.LogisticPipeline) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint model: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func EncodeModel(p *scoring.LogisticPipeline) ([]byte, error) {
	return json.MarshalIndent(modelDocument{Format: FormatLogisticPipeline, Pipeline: *p}, "", "  ")
}

func DecodeModel(data []byte) (*scoring.LogisticPipeline, error) {
	var doc modelDocument
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", NameModel, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("validate %s: %w", NameModel, err)
	}
	p := doc.Pipeline
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", NameModel, err)
	}
	return &p, nil
}

func EncodeExplainer(e *scoring.LinearExplainer, token string) ([]byte, error) {
	return json.MarshalIndent(explainerDocument{Format: FormatLinearExplainer, Token: token, Explainer: *e}, "", "  ")
}

// DecodeExplainer returns the explainer and the token of the model it was
// fit against.
func DecodeExplainer(data []byte) (*scoring.LinearExplainer, string, error) {
	var doc explainerDocument
	if err := decodeStrict(data, &doc); err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", NameExplainer, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, "", fmt.Errorf("validate %s: %w", NameExplainer, err)
	}
	e := doc.Explainer
	if err := e.Validate(); err != nil {
		return nil, "", fmt.Errorf("validate %s: %w", NameExplainer, err)
	}
	return &e, doc.Token, nil
}

func EncodeFeatureNames(names []string) ([]byte, error) {
	return json.MarshalIndent(names, "", "  ")
}

func DecodeFeatureNames(data []byte) ([]string, error) {
	var names []string
	if err := decodeStrict(data, &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", NameFeatureNames, err)
	}
	if err := validate.Var(names, "dive,required"); err != nil {
		return nil, fmt.Errorf("validate %s: %w", NameFeatureNames, err)
	}
	return names, nil
}

func EncodeSchema(s *scoring.FeatureSchema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func DecodeSchema(data []byte) (*scoring.FeatureSchema, error) {
	var s scoring.FeatureSchema
	if err := decodeStrict(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", NameSchema, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("validate %s: %w", NameSchema, err)
	}
	return &s, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
