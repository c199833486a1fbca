package scoring

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	explanationPreamble = "The decision was influenced most by:"

	// NoExplanationText is returned for an empty ranking.
	NoExplanationText = "No explanation is available for this decision."

	// UnavailableText is shown when attribution itself failed.
	UnavailableText = "Explanation unavailable: the model could not generate an explanation for this decision."
)

type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// Ranked is one feature in a top-N ranking.
type Ranked struct {
	Name  string  `json:"feature"`
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

// Direction treats zero as negative so there is no third bucket.
func (r Ranked) Direction() Direction {
	if r.Value > 0 {
		return DirectionPositive
	}
	return DirectionNegative
}

// RankTopN orders by descending absolute value, ties kept in original index
// order, and keeps at most n entries.
func RankTopN(values []float64, names []string, n int) []Ranked {
	if n <= 0 || len(values) == 0 {
		return []Ranked{}
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(magnitude(values[b]), magnitude(values[a]))
	})

	n = min(n, len(values))
	ranked := make([]Ranked, n)
	for i, idx := range order[:n] {
		name := fmt.Sprintf("f%d", idx)
		if idx < len(names) && names[idx] != "" {
			name = names[idx]
		}
		ranked[i] = Ranked{Name: name, Value: values[idx], Index: idx}
	}
	return ranked
}

// magnitude sorts NaN last.
func magnitude(v float64) float64 {
	if math.IsNaN(v) {
		return -1
	}
	return math.Abs(v)
}

// ToText renders one bullet per ranked entry under a fixed preamble.
func ToText(ranked []Ranked) string {
	if len(ranked) == 0 {
		return NoExplanationText
	}

	var b strings.Builder
	b.WriteString(explanationPreamble)
	for _, r := range ranked {
		fmt.Fprintf(&b, "\n- %s had a **%s impact**", HumanizeFeature(r.Name), r.Direction())
	}
	return b.String()
}

// HumanizeFeature turns "Loan_Tenure_Months" into "Loan tenure months".
func HumanizeFeature(name string) string {
	clean := strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' ' || r == '\t'
	}), " ")
	if clean == "" {
		return "Unnamed feature"
	}

	// Casers carry state, so each call gets its own.
	clean = cases.Lower(language.Und).String(clean)
	first, size := utf8.DecodeRuneInString(clean)
	return cases.Upper(language.Und).String(string(first)) + clean[size:]
}
