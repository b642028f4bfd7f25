package ml

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticConfig controls multinomial logistic regression training.
type LogisticConfig struct {
	C       float64 // inverse L2 strength
	MaxIter int
	Tol     float64
}

// DefaultLogisticConfig matches C=1, 1000 iterations, tol 1e-4.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{C: 1, MaxIter: 1000, Tol: 1e-4}
}

// LogisticRegression is a softmax classifier over sparse inputs.
type LogisticRegression struct {
	Classes []int       `json:"classes"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// FitLogistic minimizes mean cross-entropy plus ||W||²/(2·C·n) with
// L-BFGS. Intercepts are not penalized.
func FitLogistic(x []SparseVector, y []int, dim int, cfg LogisticConfig) (*LogisticRegression, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", ErrTooFewSamples, len(x), len(y))
	}
	if cfg.C <= 0 {
		cfg.C = 1
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 1000
	}
	if cfg.Tol <= 0 {
		cfg.Tol = 1e-4
	}

	classes := uniqueSorted(y)
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: need samples of at least 2 classes, got %v", ErrTooFewSamples, classes)
	}
	classIndex := make(map[int]int, len(classes))
	for k, c := range classes {
		classIndex[c] = k
	}
	targets := make([]int, len(y))
	for i, label := range y {
		targets[i] = classIndex[label]
	}

	obj := &softmaxObjective{x: x, y: targets, k: len(classes), dim: dim, n: float64(len(x)), c: cfg.C}
	problem := optimize.Problem{Func: obj.value, Grad: obj.gradient}
	settings := &optimize.Settings{GradientThreshold: cfg.Tol, MajorIterations: cfg.MaxIter}
	x0 := make([]float64, obj.size())

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("ml: logistic regression: %w", err)
	}

	model := &LogisticRegression{Classes: classes, Weights: make([][]float64, len(classes)), Bias: make([]float64, len(classes))}
	for k := range classes {
		model.Weights[k] = append([]float64(nil), obj.weights(result.X, k)...)
		model.Bias[k] = result.X[len(classes)*dim+k]
	}
	return model, nil
}

// Predict returns the most probable class label.
func (m *LogisticRegression) Predict(x SparseVector) int {
	best, bestScore := 0, math.Inf(-1)
	for k := range m.Classes {
		score := x.Dot(m.Weights[k]) + m.Bias[k]
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return m.Classes[best]
}

// Probabilities returns the class probabilities in Classes order.
func (m *LogisticRegression) Probabilities(x SparseVector) []float64 {
	scores := make([]float64, len(m.Classes))
	for k := range m.Classes {
		scores[k] = x.Dot(m.Weights[k]) + m.Bias[k]
	}
	softmax(scores)
	return scores
}

type softmaxObjective struct {
	x   []SparseVector
	y   []int
	k   int
	dim int
	n   float64
	c   float64
}

func (o *softmaxObjective) size() int { return o.k*o.dim + o.k }

func (o *softmaxObjective) weights(theta []float64, k int) []float64 {
	return theta[k*o.dim : (k+1)*o.dim]
}

func (o *softmaxObjective) scores(theta []float64, x SparseVector, out []float64) {
	for k := 0; k < o.k; k++ {
		out[k] = x.Dot(o.weights(theta, k)) + theta[o.k*o.dim+k]
	}
}

func (o *softmaxObjective) value(theta []float64) float64 {
	scores := make([]float64, o.k)
	var loss float64
	for i, x := range o.x {
		o.scores(theta, x, scores)
		loss += floats.LogSumExp(scores) - scores[o.y[i]]
	}
	w := theta[:o.k*o.dim]
	return loss/o.n + floats.Dot(w, w)/(2*o.c*o.n)
}

func (o *softmaxObjective) gradient(grad, theta []float64) {
	for i := range grad {
		grad[i] = 0
	}
	scores := make([]float64, o.k)
	for i, x := range o.x {
		o.scores(theta, x, scores)
		softmax(scores)
		scores[o.y[i]]--
		for k := 0; k < o.k; k++ {
			g := grad[k*o.dim : (k+1)*o.dim]
			for j, idx := range x.Indices {
				g[idx] += scores[k] * x.Values[j]
			}
			grad[o.k*o.dim+k] += scores[k]
		}
	}
	floats.Scale(1/o.n, grad)
	reg := 1 / (o.c * o.n)
	w := theta[:o.k*o.dim]
	floats.AddScaled(grad[:o.k*o.dim], reg, w)
}

// softmax converts scores to probabilities in place.
func softmax(scores []float64) {
	lse := floats.LogSumExp(scores)
	for i := range scores {
		scores[i] = math.Exp(scores[i] - lse)
	}
}

func uniqueSorted(values []int) []int {
	seen := make(map[int]struct{})
	for _, v := range values {
		seen[v] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
