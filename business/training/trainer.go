package training

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"fairFin/business/artifact"
	"fairFin/business/scoring"
)

// Result is everything a training run produces.
type Result struct {
	Pipeline     *scoring.LogisticPipeline
	Explainer    *scoring.LinearExplainer
	Schema       *scoring.FeatureSchema
	FeatureNames []string
	Token        string

	Accuracy  float64
	TrainRows int
	TestRows  int
	Loss      float64
}

// Train fits the scaler, encoder and classifier on synthetic data, then
// builds the explainer against the training background.
func Train(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	train, test := split(Synthesize(cfg), cfg.TestFraction, cfg.Seed)
	if len(train) == 0 || len(test) == 0 {
		return nil, fmt.Errorf("split of %d rows left an empty partition", cfg.Rows)
	}

	schema := &scoring.FeatureSchema{
		Numerical:           NumericalColumns,
		Categorical:         CategoricalColumns,
		CategoricalDefaults: modes(train),
	}

	pipeline := &scoring.LogisticPipeline{
		Scaler:  fitScaler(train),
		Encoder: fitEncoder(train),
	}
	pipeline.Classifier.Coef = make([]float64, pipeline.Width())

	x, y, err := design(pipeline, schema, train)
	if err != nil {
		return nil, err
	}

	loss, err := fitLogistic(ctx, &pipeline.Classifier, x, y, cfg)
	if err != nil {
		return nil, err
	}

	names := pipeline.DerivedFeatureNames()
	pipeline.SetFeatureNames(names)

	accuracy, err := evaluate(pipeline, schema, test)
	if err != nil {
		return nil, err
	}

	token, err := artifact.Fingerprint(pipeline)
	if err != nil {
		return nil, err
	}

	return &Result{
		Pipeline: pipeline,
		Explainer: &scoring.LinearExplainer{
			Coef:      slices.Clone(pipeline.Classifier.Coef),
			Intercept: pipeline.Classifier.Intercept,
			Expected:  columnMeans(x),
		},
		Schema:       schema,
		FeatureNames: names,
		Token:        token,
		Accuracy:     accuracy,
		TrainRows:    len(train),
		TestRows:     len(test),
		Loss:         loss,
	}, nil
}

// fitScaler uses the population standard deviation; constant columns get
// scale 1.
func fitScaler(samples []Sample) scoring.StandardScaler {
	s := scoring.StandardScaler{
		Columns: NumericalColumns,
		Mean:    make([]float64, len(NumericalColumns)),
		Scale:   make([]float64, len(NumericalColumns)),
	}
	n := float64(len(samples))
	for j, col := range NumericalColumns {
		sum := 0.0
		for _, smp := range samples {
			sum += smp.Record[col].(float64)
		}
		mean := sum / n

		ss := 0.0
		for _, smp := range samples {
			d := smp.Record[col].(float64) - mean
			ss += d * d
		}
		std := math.Sqrt(ss / n)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}
	return s
}

// fitEncoder collects the sorted distinct labels of each categorical column.
func fitEncoder(samples []Sample) scoring.OneHotEncoder {
	e := scoring.OneHotEncoder{
		Columns:    CategoricalColumns,
		Categories: make([][]string, len(CategoricalColumns)),
	}
	for j, col := range CategoricalColumns {
		seen := make(map[string]struct{})
		for _, smp := range samples {
			seen[smp.Record[col].(string)] = struct{}{}
		}
		levels := make([]string, 0, len(seen))
		for level := range seen {
			levels = append(levels, level)
		}
		slices.Sort(levels)
		e.Categories[j] = levels
	}
	return e
}

// modes returns the most frequent label per categorical column, ties to the
// alphabetically first label.
func modes(samples []Sample) map[string]string {
	out := make(map[string]string, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		counts := make(map[string]int)
		for _, smp := range samples {
			counts[smp.Record[col].(string)]++
		}
		type kv struct {
			label string
			n     int
		}
		ranked := make([]kv, 0, len(counts))
		for label, n := range counts {
			ranked = append(ranked, kv{label, n})
		}
		slices.SortFunc(ranked, func(a, b kv) int {
			if c := cmp.Compare(b.n, a.n); c != 0 {
				return c
			}
			return cmp.Compare(a.label, b.label)
		})
		if len(ranked) > 0 {
			out[col] = ranked[0].label
		}
	}
	return out
}

func design(p *scoring.LogisticPipeline, schema *scoring.FeatureSchema, samples []Sample) ([][]float64, []float64, error) {
	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, smp := range samples {
		row, err := p.Transform(scoring.Align(smp.Record, schema))
		if err != nil {
			return nil, nil, fmt.Errorf("transform training row %d: %w", i, err)
		}
		x[i] = row
		y[i] = float64(smp.Approved)
	}
	return x, y, nil
}

// fitLogistic runs full-batch gradient descent on the mean log-loss plus an
// L2 penalty of l2/(2n)*||w||^2. The intercept is not penalized.
func fitLogistic(ctx context.Context, clf *scoring.LogisticRegression, x [][]float64, y []float64, cfg Config) (float64, error) {
	n := float64(len(x))
	width := len(clf.Coef)
	grad := make([]float64, width)

	loss := math.Inf(1)
	for epoch := range cfg.Epochs {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("context error: %w", err)
		}

		clear(grad)
		gradB := 0.0
		loss = 0
		for i, row := range x {
			z := clf.Intercept
			for j, v := range row {
				z += clf.Coef[j] * v
			}
			p := 1 / (1 + math.Exp(-z))
			d := p - y[i]
			for j, v := range row {
				grad[j] += d * v
			}
			gradB += d
			loss += logLoss(p, y[i])
		}

		penalty := 0.0
		for j := range clf.Coef {
			penalty += clf.Coef[j] * clf.Coef[j]
			clf.Coef[j] -= cfg.LearningRate * (grad[j] + cfg.L2*clf.Coef[j]) / n
		}
		clf.Intercept -= cfg.LearningRate * gradB / n
		loss = (loss + cfg.L2*penalty/2) / n

		if math.IsNaN(loss) {
			return 0, fmt.Errorf("training diverged at epoch %d", epoch)
		}
	}
	return loss, nil
}

func logLoss(p, y float64) float64 {
	const eps = 1e-15
	p = min(max(p, eps), 1-eps)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

func evaluate(p *scoring.LogisticPipeline, schema *scoring.FeatureSchema, samples []Sample) (float64, error) {
	correct := 0
	for _, smp := range samples {
		pred, err := scoring.Score(p, scoring.Align(smp.Record, schema))
		if err != nil {
			return 0, err
		}
		if pred.Class == smp.Approved {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}

func columnMeans(x [][]float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	means := make([]float64, len(x[0]))
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(x))
	}
	return means
}
