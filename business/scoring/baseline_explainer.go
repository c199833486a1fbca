package scoring

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
)

const (
	// maxExactFeatures caps exact subset enumeration at 2^14 model calls.
	maxExactFeatures = 14
	maxMaskFeatures  = 63

	defaultPermutations = 256
	defaultSampleSeed   = 42
)

// decisionModel is implemented by models that expose log-odds directly.
type decisionModel interface {
	DecisionFunction(x []float64) (float64, error)
}

// BaselineExplainer computes Shapley values over raw columns against a
// neutral background of schema width. It needs no training artifact but its
// values are only as meaningful as the baseline is close to the input.
type BaselineExplainer struct {
	baseline     AlignedRecord
	weights      []float64
	permutations int
	seed         int64
}

var _ Explainer = (*BaselineExplainer)(nil)

// NewBaselineExplainer prepares an explainer for the given schema.
func NewBaselineExplainer(schema *FeatureSchema) (*BaselineExplainer, error) {
	if !schema.Known() {
		return nil, ErrSchemaMissing
	}
	if schema.Width() > maxMaskFeatures {
		return nil, fmt.Errorf("%w: %d columns exceed baseline explainer limit %d", ErrShapeMismatch, schema.Width(), maxMaskFeatures)
	}

	e := &BaselineExplainer{
		baseline:     schema.Baseline(),
		permutations: defaultPermutations,
		seed:         defaultSampleSeed,
	}
	if schema.Width() <= maxExactFeatures {
		e.weights = shapleyWeights(schema.Width())
	}
	return e, nil
}

func (e *BaselineExplainer) Space() Space { return SpaceRaw }

// Attributions returns two channels, deny then approve, in log-odds units.
func (e *BaselineExplainer) Attributions(model Model, rec AlignedRecord, _ []float64) (any, error) {
	if !rec.Aligned {
		return nil, fmt.Errorf("%w: baseline explainer needs an aligned record", ErrSchemaMissing)
	}
	names := e.baseline.Names()
	if rec.Len() != len(names) {
		return nil, fmt.Errorf("%w: record has %d columns, baseline %d", ErrShapeMismatch, rec.Len(), len(names))
	}
	for i, f := range rec.Fields {
		if f.Name != names[i] {
			return nil, fmt.Errorf("%w: column %d is %q, baseline expects %q", ErrShapeMismatch, i, f.Name, names[i])
		}
	}

	value := func(mask uint64) (float64, error) {
		return e.evaluate(model, rec, mask)
	}

	var (
		phi []float64
		err error
	)
	if e.weights != nil {
		phi, err = e.exact(rec.Len(), value)
	} else {
		phi, err = e.sampled(rec.Len(), value)
	}
	if err != nil {
		return nil, err
	}

	deny := make([]float64, len(phi))
	for i, v := range phi {
		deny[i] = -v
	}
	return [][]float64{deny, phi}, nil
}

// evaluate scores rec with every column outside mask replaced by baseline.
func (e *BaselineExplainer) evaluate(model Model, rec AlignedRecord, mask uint64) (float64, error) {
	fields := make([]Field, rec.Len())
	for i := range fields {
		if mask&(1<<uint(i)) != 0 {
			fields[i] = rec.Fields[i]
		} else {
			fields[i] = e.baseline.Fields[i]
		}
	}

	x, err := model.Transform(AlignedRecord{Fields: fields, Aligned: true})
	if err != nil {
		return 0, err
	}
	if dm, ok := model.(decisionModel); ok {
		return dm.DecisionFunction(x)
	}
	p, err := model.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return logit(p), nil
}

func (e *BaselineExplainer) exact(n int, value func(uint64) (float64, error)) ([]float64, error) {
	size := 1 << uint(n)
	v := make([]float64, size)
	for mask := range size {
		out, err := value(uint64(mask))
		if err != nil {
			return nil, err
		}
		v[mask] = out
	}

	phi := make([]float64, n)
	for i := range n {
		bit := 1 << uint(i)
		for mask := range size {
			if mask&bit != 0 {
				continue
			}
			phi[i] += e.weights[bits.OnesCount64(uint64(mask))] * (v[mask|bit] - v[mask])
		}
	}
	return phi, nil
}

// sampled estimates Shapley values from seeded random permutations so
// identical inputs give identical output.
func (e *BaselineExplainer) sampled(n int, value func(uint64) (float64, error)) ([]float64, error) {
	if e.permutations <= 0 {
		return nil, errors.New("no permutations configured")
	}
	rng := rand.New(rand.NewSource(e.seed))
	phi := make([]float64, n)

	empty, err := value(0)
	if err != nil {
		return nil, err
	}
	for range e.permutations {
		var mask uint64
		prev := empty
		for _, i := range rng.Perm(n) {
			mask |= 1 << uint(i)
			cur, err := value(mask)
			if err != nil {
				return nil, err
			}
			phi[i] += cur - prev
			prev = cur
		}
	}
	for i := range phi {
		phi[i] /= float64(e.permutations)
	}
	return phi, nil
}
