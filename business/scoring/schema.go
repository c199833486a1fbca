package scoring

// FeatureSchema is the ordered raw-input layout a model version was trained on.
type FeatureSchema struct {
	Numerical   []string `json:"numerical_cols" validate:"dive,required"`
	Categorical []string `json:"categorical_cols" validate:"dive,required"`

	// NumericDefaults holds the neutral value per numeric column. Columns
	// without an entry default to 0.
	NumericDefaults map[string]float64 `json:"numeric_defaults,omitempty"`

	// CategoricalDefaults holds the most frequent training label per
	// categorical column. Columns without an entry default to the empty
	// label, which encodes to an all-zero one-hot block.
	CategoricalDefaults map[string]string `json:"categorical_defaults,omitempty"`
}

// Known reports whether the schema carries any column list at all.
func (s *FeatureSchema) Known() bool {
	return s != nil && len(s.Numerical)+len(s.Categorical) > 0
}

func (s *FeatureSchema) Width() int {
	if s == nil {
		return 0
	}
	return len(s.Numerical) + len(s.Categorical)
}

// Columns returns numerical then categorical names, in schema order.
func (s *FeatureSchema) Columns() []string {
	if s == nil {
		return nil
	}
	cols := make([]string, 0, s.Width())
	cols = append(cols, s.Numerical...)
	return append(cols, s.Categorical...)
}

func (s *FeatureSchema) numericDefault(col string) float64 {
	if v, ok := s.NumericDefaults[col]; ok {
		return v
	}
	return 0
}

func (s *FeatureSchema) categoricalDefault(col string) string {
	if v, ok := s.CategoricalDefaults[col]; ok {
		return v
	}
	return ""
}

// Baseline is the all-neutral record of schema width: 0 for every numeric
// column and the empty label for every categorical column.
func (s *FeatureSchema) Baseline() AlignedRecord {
	fields := make([]Field, 0, s.Width())
	if s == nil {
		return AlignedRecord{Fields: fields}
	}
	for _, col := range s.Numerical {
		fields = append(fields, Field{Name: col, Value: 0.0})
	}
	for _, col := range s.Categorical {
		fields = append(fields, Field{Name: col, Value: ""})
	}
	return AlignedRecord{Fields: fields, Aligned: true}
}
