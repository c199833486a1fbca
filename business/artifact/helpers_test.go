package artifact

import (
	"context"
	"sync"
	"testing"

	"fairFin/business/scoring"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	calls int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, version, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.data[version+"/"+name]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *memStore) Put(_ context.Context, version, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[version+"/"+name] = data
	return nil
}

func testPipeline() *scoring.LogisticPipeline {
	return &scoring.LogisticPipeline{
		Scaler: scoring.StandardScaler{
			Columns: []string{"Annual_Income", "Credit_Score"},
			Mean:    []float64{85000, 575},
			Scale:   []float64{37000, 159},
		},
		Encoder: scoring.OneHotEncoder{
			Columns:    []string{"Region"},
			Categories: [][]string{{"Rural", "Urban"}},
		},
		Classifier: scoring.LogisticRegression{
			Coef:      []float64{2.5, 1.5, -0.1, 0.1},
			Intercept: -0.4,
		},
	}
}

func testSchema() *scoring.FeatureSchema {
	return &scoring.FeatureSchema{
		Numerical:           []string{"Annual_Income", "Credit_Score"},
		Categorical:         []string{"Region"},
		CategoricalDefaults: map[string]string{"Region": "Urban"},
	}
}

func testExplainer(p *scoring.LogisticPipeline) *scoring.LinearExplainer {
	return &scoring.LinearExplainer{
		Coef:      append([]float64(nil), p.Classifier.Coef...),
		Intercept: p.Classifier.Intercept,
		Expected:  []float64{0, 0, 0.5, 0.5},
	}
}

// publish writes a complete, consistent bundle for version.
func publish(t *testing.T, store Store, version string) string {
	t.Helper()
	ctx := context.Background()
	p := testPipeline()

	token, err := Fingerprint(p)
	require.NoError(t, err)

	model, err := EncodeModel(p)
	require.NoError(t, err)
	explainer, err := EncodeExplainer(testExplainer(p), token)
	require.NoError(t, err)
	names, err := EncodeFeatureNames(p.DerivedFeatureNames())
	require.NoError(t, err)
	schema, err := EncodeSchema(testSchema())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, version, NameModel, model))
	require.NoError(t, store.Put(ctx, version, NameExplainer, explainer))
	require.NoError(t, store.Put(ctx, version, NameFeatureNames, names))
	require.NoError(t, store.Put(ctx, version, NameSchema, schema))
	return token
}
