package scoring

// Explanation is a fresh, uncached rendering of one decision.
type Explanation struct {
	Entries []Ranked `json:"entries"`
	Space   Space    `json:"space"`
	Text    string   `json:"text"`
	Chart   *Chart   `json:"chart,omitempty"`
}

// Explain runs attribution and renders the top n contributors. The chart is
// omitted when there is nothing to draw.
func Explain(explainer Explainer, model Model, rec AlignedRecord, n int) (*Explanation, error) {
	attr, err := Attribute(explainer, model, rec)
	if err != nil {
		return nil, err
	}

	ranked := RankTopN(attr.Values, attr.Names, n)
	out := &Explanation{
		Entries: ranked,
		Space:   attr.Space,
		Text:    ToText(ranked),
	}
	if len(ranked) > 0 {
		out.Chart = ToChart(ranked)
	}
	return out, nil
}
