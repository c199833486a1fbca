//go:build !integration

package scoring

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stressWorkers = 8
	stressRecords = 400
)

var stressRegions = []string{"Rural", "Semi-Urban", "Urban", "Lunar"}

func stressRecord(rng *rand.Rand) Record {
	rec := Record{
		"Annual_Income":      20000 + rng.Float64()*180000,
		"Credit_Score":       float64(300 + rng.Intn(551)),
		"Loan_Amount":        50000 + rng.Float64()*150000,
		"Loan_Tenure_Months": float64(12 + rng.Intn(49)),
		"Region":             stressRegions[rng.Intn(len(stressRegions))],
	}
	if rng.Intn(3) == 0 {
		rec["Existing_Loans"] = float64(rng.Intn(4))
	}
	return rec
}

// A shared pipeline and explainers serve concurrent requests with the same
// answers as a sequential run.
func TestConcurrentScoringMatchesSequential(t *testing.T) {
	model := loanPipeline()
	schema := loanSchema()
	linear := loanExplainer(model)
	baseline, err := NewBaselineExplainer(schema)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	records := make([]Record, stressRecords)
	for i := range records {
		records[i] = stressRecord(rng)
	}

	type result struct {
		pred    Prediction
		linear  []Ranked
		shapley []Ranked
	}
	run := func(rec Record) (result, error) {
		aligned := Align(rec, schema)
		pred, err := Score(model, aligned)
		if err != nil {
			return result{}, err
		}
		lin, err := Explain(linear, model, aligned, 3)
		if err != nil {
			return result{}, err
		}
		shp, err := Explain(baseline, model, aligned, 3)
		if err != nil {
			return result{}, err
		}
		return result{pred: pred, linear: lin.Entries, shapley: shp.Entries}, nil
	}

	want := make([]result, len(records))
	for i, rec := range records {
		want[i], err = run(rec)
		require.NoError(t, err)
	}

	got := make([]result, len(records))
	errs := make([]error, len(records))
	var wg sync.WaitGroup
	for w := range stressWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < len(records); i += stressWorkers {
				got[i], errs[i] = run(records[i])
			}
		}()
	}
	wg.Wait()

	approved := 0
	for i := range records {
		require.NoError(t, errs[i], fmt.Sprintf("record %d", i))
		assert.Equal(t, want[i], got[i], fmt.Sprintf("record %d", i))
		if got[i].pred.Approved() {
			approved++
		}
	}
	t.Logf("records=%d approved=%d", len(records), approved)
}
