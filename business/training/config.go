package training

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config drives one offline training run.
type Config struct {
	Seed         int64   `yaml:"seed"`
	Rows         int     `yaml:"rows" validate:"min=20"`
	TestFraction float64 `yaml:"test_fraction" validate:"gt=0,lt=1"`

	// ApprovalThreshold labels a synthetic applicant approved when its
	// weighted score is above it.
	ApprovalThreshold float64 `yaml:"approval_threshold" validate:"gt=0,lt=1"`

	Epochs       int     `yaml:"epochs" validate:"min=1"`
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0"`
	L2           float64 `yaml:"l2" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		Seed:              42,
		Rows:              1000,
		TestFraction:      0.2,
		ApprovalThreshold: 0.4,
		Epochs:            500,
		LearningRate:      0.5,
		L2:                1.0,
	}
}

var validate = validator.New()

// LoadConfig reads a YAML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read training config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse training config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid training config: %w", err)
	}
	return nil
}
