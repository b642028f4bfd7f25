package ml

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

const leafFeature = -1

// TreeNode is a node of a fitted regression tree. Leaves have Feature -1.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value"`
}

// RegressionTree is a CART tree grown on squared error.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for one feature row.
func (t *RegressionTree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ForestConfig controls random forest training.
type ForestConfig struct {
	Trees           int
	Seed            int64
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxDepth        int // 0 means unlimited
}

// DefaultForestConfig mirrors the usual random forest regressor defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, Seed: 42, MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// RandomForest is a bagged ensemble of regression trees that consider every
// feature at each split.
type RandomForest struct {
	Features int              `json:"features"`
	Trees    []RegressionTree `json:"trees"`
}

// FitForest grows cfg.Trees trees on bootstrap samples of (x, y). Each tree
// draws its own seed from cfg.Seed, so the result does not depend on
// goroutine scheduling.
func FitForest(x [][]float64, y []float64, cfg ForestConfig) (*RandomForest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty training set", ErrTooFewSamples)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("ml: %d feature rows but %d targets", len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("ml: row %d has %d features, want %d", i, len(row), width)
		}
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Trees)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	forest := &RandomForest{Features: width, Trees: make([]RegressionTree, cfg.Trees)}
	var wg sync.WaitGroup
	for i := range seeds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trng := rand.New(rand.NewSource(seeds[i]))
			sample := make([]int, len(x))
			for j := range sample {
				sample[j] = trng.Intn(len(x))
			}
			b := &treeBuilder{x: x, y: y, cfg: cfg}
			b.grow(sample, 0)
			forest.Trees[i] = RegressionTree{Nodes: b.nodes}
		}(i)
	}
	wg.Wait()
	return forest, nil
}

// Predict averages the trees' predictions for one row.
func (f *RandomForest) Predict(x []float64) (float64, error) {
	if len(x) != f.Features {
		return 0, fmt.Errorf("ml: got %d features, model expects %d", len(x), f.Features)
	}
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("ml: forest has no trees")
	}
	preds := make([]float64, len(f.Trees))
	for i := range f.Trees {
		preds[i] = f.Trees[i].Predict(x)
	}
	return stat.Mean(preds, nil), nil
}

// PredictBatch predicts every row of x.
func (f *RandomForest) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		p, err := f.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

type treeBuilder struct {
	x     [][]float64
	y     []float64
	cfg   ForestConfig
	nodes []TreeNode
}

func (b *treeBuilder) targets(idx []int) []float64 {
	ys := make([]float64, len(idx))
	for i, j := range idx {
		ys[i] = b.y[j]
	}
	return ys
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	ys := b.targets(idx)
	self := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: leafFeature, Value: stat.Mean(ys, nil)})

	if len(idx) < b.cfg.MinSamplesSplit || (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) || constant(ys) {
		return self
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, j := range idx {
		if b.x[j][feature] <= threshold {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self] = TreeNode{Feature: feature, Threshold: threshold, Left: l, Right: r, Value: b.nodes[self].Value}
	return self
}

// bestSplit maximizes sumL²/nL + sumR²/nR, which minimizes the summed
// squared error of the children.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total float64
	for _, j := range idx {
		total += b.y[j]
	}
	bestScore := total * total / float64(n)
	order := make([]int, n)

	for f := range b.x[idx[0]] {
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		var leftSum float64
		for i := 1; i < n; i++ {
			leftSum += b.y[order[i-1]]
			lo, hi := b.x[order[i-1]][f], b.x[order[i]][f]
			if lo == hi {
				continue
			}
			if i < b.cfg.MinSamplesLeaf || n-i < b.cfg.MinSamplesLeaf {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(i) + rightSum*rightSum/float64(n-i)
			if score > bestScore+1e-12 || !ok && score >= bestScore {
				bestScore = score
				feature = f
				threshold = lo + (hi-lo)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func constant(ys []float64) bool {
	for _, v := range ys[1:] {
		if v != ys[0] {
			return false
		}
	}
	return true
}
