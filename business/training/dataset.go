package training

import (
	"math/rand"

	"fairFin/business/scoring"
)

var (
	NumericalColumns   = []string{"Annual_Income", "Credit_Score", "Loan_Amount", "Loan_Tenure_Months", "Existing_Loans", "Monthly_Expenses"}
	CategoricalColumns = []string{"Gender", "Region", "Employment_Type"}
)

var (
	genders         = []string{"Male", "Female"}
	regions         = []string{"Urban", "Rural", "Semi-Urban"}
	employmentTypes = []string{"Salaried", "Self-Employed", "Freelancer"}
	tenures         = []float64{12, 24, 36, 48, 60}
)

type Sample struct {
	Record   scoring.Record
	Approved int
}

// Synthesize draws rows loan applications and labels them with a fixed
// weighted rule over normalized income, credit score, loan amount,
// expenses, existing loans and tenure. The same seed gives the same data.
func Synthesize(cfg Config) []Sample {
	rng := rand.New(rand.NewSource(cfg.Seed))
	between := func(lo, hi int) float64 { return float64(lo + rng.Intn(hi-lo+1)) }

	samples := make([]Sample, cfg.Rows)
	var maxIncome, maxLoan, maxExpenses float64
	for i := range samples {
		rec := scoring.Record{
			"Gender":             genders[rng.Intn(len(genders))],
			"Region":             regions[rng.Intn(len(regions))],
			"Employment_Type":    employmentTypes[rng.Intn(len(employmentTypes))],
			"Annual_Income":      between(20000, 150000),
			"Credit_Score":       between(300, 850),
			"Loan_Amount":        between(50000, 200000),
			"Loan_Tenure_Months": tenures[rng.Intn(len(tenures))],
			"Existing_Loans":     between(0, 3),
			"Monthly_Expenses":   between(5000, 30000),
		}
		maxIncome = max(maxIncome, rec["Annual_Income"].(float64))
		maxLoan = max(maxLoan, rec["Loan_Amount"].(float64))
		maxExpenses = max(maxExpenses, rec["Monthly_Expenses"].(float64))
		samples[i].Record = rec
	}

	for i := range samples {
		rec := samples[i].Record
		score := 0.4*rec["Annual_Income"].(float64)/maxIncome +
			0.3*rec["Credit_Score"].(float64)/850 -
			0.2*rec["Loan_Amount"].(float64)/maxLoan -
			0.1*rec["Monthly_Expenses"].(float64)/maxExpenses -
			0.05*rec["Existing_Loans"].(float64)/3 +
			0.05*rec["Loan_Tenure_Months"].(float64)/60
		score = min(max(score, 0), 1)
		if score > cfg.ApprovalThreshold {
			samples[i].Approved = 1
		}
	}
	return samples
}

// split shuffles with the run seed and holds out testFraction of samples.
func split(samples []Sample, testFraction float64, seed int64) (train, test []Sample) {
	order := rand.New(rand.NewSource(seed)).Perm(len(samples))
	nTest := int(float64(len(samples)) * testFraction)
	test = make([]Sample, 0, nTest)
	train = make([]Sample, 0, len(samples)-nTest)
	for i, idx := range order {
		if i < nTest {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test
}
