package scoring

import (
	"fmt"
)

// Space names the feature space an attribution vector is aligned to.
type Space string

const (
	SpaceRaw         Space = "raw"
	SpaceTransformed Space = "transformed"
)

// ApprovalChannel is the output index of the approved class in
// multi-output explainer results.
const ApprovalChannel = 1

// Explainer produces attribution values for a single record. The returned
// value may be any of the shapes accepted by flattenAttribution.
type Explainer interface {
	Space() Space
	// Attributions receives the aligned record and, for transformed-space
	// explainers, the model input x. Raw-space explainers get x == nil.
	Attributions(model Model, rec AlignedRecord, x []float64) (any, error)
}

// Attribution is a flat vector with the names it lines up with.
type Attribution struct {
	Values []float64 `json:"values"`
	Names  []string  `json:"names"`
	Space  Space     `json:"space"`
}

// Attribute explains one prediction. Failures come back as *AttributionError.
func Attribute(explainer Explainer, model Model, rec AlignedRecord) (Attribution, error) {
	if explainer == nil {
		return Attribution{}, &AttributionError{Op: "load", Err: ErrExplainerUnavailable}
	}
	if model == nil {
		return Attribution{}, &AttributionError{Op: "load", Err: ErrModelUnavailable}
	}

	var (
		x     []float64
		names []string
		space = explainer.Space()
	)
	switch space {
	case SpaceTransformed:
		var err error
		x, err = model.Transform(rec)
		if err != nil {
			return Attribution{}, &AttributionError{Op: "transform", Err: err}
		}
		names = model.FeatureNames()
	case SpaceRaw:
		names = rec.Names()
	default:
		return Attribution{}, &AttributionError{Op: "space", Err: fmt.Errorf("unknown space %q", space)}
	}

	raw, err := explainer.Attributions(model, rec, x)
	if err != nil {
		return Attribution{}, &AttributionError{Op: "explain", Err: err}
	}

	values, err := flattenAttribution(raw)
	if err != nil {
		return Attribution{}, &AttributionError{Op: "normalize", Err: err}
	}
	if !finite(values) {
		return Attribution{}, &AttributionError{Op: "normalize", Err: fmt.Errorf("non-finite attribution values")}
	}

	if len(names) == 0 {
		names = syntheticNames(len(values))
	}
	if len(names) != len(values) {
		return Attribution{}, &AttributionError{
			Op:  "normalize",
			Err: fmt.Errorf("%w: %d values for %d feature names", ErrShapeMismatch, len(values), len(names)),
		}
	}

	return Attribution{Values: values, Names: names, Space: space}, nil
}

// flattenAttribution is the only place that inspects explainer output
// shapes. Accepted:
//
//	[]float64 / []float32          one value per feature
//	[][]float64 with one row       a single explained row
//	[][]float64 with many rows     one row per output channel
//	[][][]float64                  channel x row x feature
//
// Multi-channel results are reduced to ApprovalChannel, or channel 0 when
// there is only one.
func flattenAttribution(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return clone(v), nil
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, nil
	case [][]float64:
		switch len(v) {
		case 0:
			return nil, fmt.Errorf("%w: empty attribution output", ErrShapeMismatch)
		case 1:
			return clone(v[0]), nil
		default:
			return clone(v[approvalIndex(len(v))]), nil
		}
	case [][][]float64:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty attribution output", ErrShapeMismatch)
		}
		rows := v[approvalIndex(len(v))]
		if len(rows) != 1 {
			return nil, fmt.Errorf("%w: expected a single explained row, got %d", ErrShapeMismatch, len(rows))
		}
		return clone(rows[0]), nil
	case nil:
		return nil, fmt.Errorf("%w: explainer returned nothing", ErrShapeMismatch)
	default:
		return nil, fmt.Errorf("%w: unsupported attribution output %T", ErrShapeMismatch, raw)
	}
}

func approvalIndex(channels int) int {
	if channels > ApprovalChannel {
		return ApprovalChannel
	}
	return 0
}

func syntheticNames(n int) []string {
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("f%d", i)
	}
	return names
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
