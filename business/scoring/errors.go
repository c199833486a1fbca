package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMissing marks best-effort unaligned mode. It is never fatal.
	ErrSchemaMissing = errors.New("feature schema missing, running unaligned")

	ErrModelUnavailable     = errors.New("model unavailable")
	ErrExplainerUnavailable = errors.New("explainer unavailable")
	ErrMissingColumn        = errors.New("missing column")
	ErrUntransformable      = errors.New("untransformable value")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrEmptyChart           = errors.New("chart has no bars")
)

// ScoringError is returned when the model rejects an aligned record or
// fails during inference. Callers present it as "prediction unavailable".
type ScoringError struct {
	Op  string
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring %s: %v", e.Op, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// AttributionError is returned when no attribution can be produced for a
// record. It is independent of ScoringError.
type AttributionError struct {
	Op  string
	Err error
}

func (e *AttributionError) Error() string {
	return fmt.Sprintf("attribution %s: %v", e.Op, e.Err)
}

func (e *AttributionError) Unwrap() error { return e.Err }

// RenderError is only raised when a chart cannot be drawn.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render chart: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
