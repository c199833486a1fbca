package scoring

import "math"

// maxLogit bounds log-odds so probabilities of exactly 0 or 1 stay finite.
const maxLogit = 36.0

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func logit(p float64) float64 {
	switch {
	case p <= 0:
		return -maxLogit
	case p >= 1:
		return maxLogit
	}
	z := math.Log(p / (1 - p))
	return math.Max(-maxLogit, math.Min(maxLogit, z))
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// shapleyWeights[s] = s!(n-s-1)!/n! for coalitions of size s.
func shapleyWeights(n int) []float64 {
	w := make([]float64, n)
	for s := range n {
		lw, _ := math.Lgamma(float64(s + 1))
		lr, _ := math.Lgamma(float64(n - s))
		ln, _ := math.Lgamma(float64(n + 1))
		w[s] = math.Exp(lw + lr - ln)
	}
	return w
}
