package classifier

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
)

// KNN is a majority-vote nearest-neighbour classifier. The probability of
// a class is its share of the K votes.
type KNN struct {
	K       int
	Classes int

	X [][]float64
	y []int
}

// NewKNN creates an unfitted model over the given number of classes.
func NewKNN(k, classes int) *KNN {
	return &KNN{K: k, Classes: classes}
}

// Fit stores the training data. X is not copied and must not be mutated
// afterwards.
func (m *KNN) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return ErrEmpty
	}
	if len(X) != len(y) {
		return fmt.Errorf("classifier: %d rows but %d labels", len(X), len(y))
	}
	if m.K <= 0 {
		return fmt.Errorf("classifier: k must be positive, got %d", m.K)
	}
	if err := checkShape(X, len(X[0])); err != nil {
		return err
	}
	for i, c := range y {
		if c < 0 || c >= m.Classes {
			return fmt.Errorf("classifier: label %d at row %d outside [0,%d)", c, i, m.Classes)
		}
	}
	m.X = X
	m.y = y
	return nil
}

// Width is the feature count the model was fitted on.
func (m *KNN) Width() int {
	if len(m.X) == 0 {
		return 0
	}
	return len(m.X[0])
}

func (m *KNN) Predict(X [][]float64) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		out[i] = Argmax(p)
	}
	return out, nil
}

func (m *KNN) PredictProba(X [][]float64) ([][]float64, error) {
	if len(m.X) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkShape(X, m.Width()); err != nil {
		return nil, err
	}

	out := make([][]float64, len(X))
	if len(X) == 0 {
		return out, nil
	}

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.votes(X[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

func (m *KNN) votes(xi []float64) []float64 {
	type pair struct {
		d float64
		c int
	}

	k := min(m.K, len(m.X))
	nbrs := make([]pair, 0, k+1)
	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		if len(nbrs) < k {
			nbrs = append(nbrs, pair{d, m.y[j]})
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		} else if d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = pair{d, m.y[j]}
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		}
	}

	counts := make([]int, m.Classes)
	for _, p := range nbrs {
		counts[p.c]++
	}
	proba := make([]float64, m.Classes)
	for c, n := range counts {
		proba[c] = float64(n) / float64(len(nbrs))
	}
	return proba
}

func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// TrainTestSplit shuffles rows with rng and holds out testRatio of them.
func TrainTestSplit(X [][]float64, y []int, testRatio float64, rng *rand.Rand) (XTrain, XTest [][]float64, yTrain, yTest []int) {
	n := len(X)
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			yTest = append(yTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return
}
