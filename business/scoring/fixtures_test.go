package scoring

var (
	loanNumerical   = []string{"Annual_Income", "Credit_Score", "Loan_Amount", "Loan_Tenure_Months", "Existing_Loans", "Monthly_Expenses"}
	loanCategorical = []string{"Gender", "Region", "Employment_Type"}
)

func loanSchema() *FeatureSchema {
	return &FeatureSchema{
		Numerical:   loanNumerical,
		Categorical: loanCategorical,
		CategoricalDefaults: map[string]string{
			"Gender":          "Male",
			"Region":          "Urban",
			"Employment_Type": "Salaried",
		},
	}
}

// loanPipeline is a hand-fit pipeline close to what the trainer produces.
func loanPipeline() *LogisticPipeline {
	p := &LogisticPipeline{
		Scaler: StandardScaler{
			Columns: loanNumerical,
			Mean:    []float64{85000, 575, 125000, 36, 1.5, 17500},
			Scale:   []float64{37000, 159, 43000, 17, 1.1, 7200},
		},
		Encoder: OneHotEncoder{
			Columns: loanCategorical,
			Categories: [][]string{
				{"Female", "Male"},
				{"Rural", "Semi-Urban", "Urban"},
				{"Freelancer", "Salaried", "Self-Employed"},
			},
		},
		Classifier: LogisticRegression{
			Coef:      []float64{2.9, 1.6, -1.4, 0.3, -0.2, -0.6, 0.01, -0.01, 0.02, 0, -0.02, 0.01, 0, -0.01},
			Intercept: -3.1,
		},
	}
	p.SetFeatureNames(p.DerivedFeatureNames())
	return p
}

func loanExplainer(p *LogisticPipeline) *LinearExplainer {
	expected := make([]float64, p.Width())
	// one-hot means for a roughly uniform training mix
	copy(expected[6:], []float64{0.5, 0.5, 1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3})
	return &LinearExplainer{
		Coef:      append([]float64(nil), p.Classifier.Coef...),
		Intercept: p.Classifier.Intercept,
		Expected:  expected,
	}
}

func scenarioRecord() Record {
	return Record{
		"Annual_Income":      500000.0,
		"Credit_Score":       650.0,
		"Loan_Amount":        50000.0,
		"Loan_Tenure_Months": 36.0,
		"Existing_Loans":     0.0,
		"Monthly_Expenses":   20000.0,
		"Gender":             "Male",
		"Region":             "Urban",
		"Employment_Type":    "Salaried",
	}
}
