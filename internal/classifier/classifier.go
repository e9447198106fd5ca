// Package classifier defines the contract the inference engine queries and
// ships a small k-nearest-neighbour model that satisfies it.
package classifier

import (
	"errors"
	"fmt"
)

// Classifier is a trained multi-class model. Rows of X are feature vectors
// in schema order. Implementations must be safe for concurrent use once
// loaded.
type Classifier interface {
	// Predict returns one class code per row.
	Predict(X [][]float64) ([]int, error)
	// PredictProba returns, per row, a distribution over every class code
	// that sums to 1.
	PredictProba(X [][]float64) ([][]float64, error)
}

var (
	ErrNotFitted = errors.New("classifier: model is not fitted")
	ErrEmpty     = errors.New("classifier: empty training set")
)

// ShapeError reports a row whose width does not match the model.
type ShapeError struct {
	Row, Got, Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("classifier: row %d has %d features, model expects %d", e.Row, e.Got, e.Want)
}

func checkShape(X [][]float64, width int) error {
	for i, row := range X {
		if len(row) != width {
			return &ShapeError{Row: i, Got: len(row), Want: width}
		}
	}
	return nil
}

// Argmax returns the index of the largest value; ties go to the lowest index.
func Argmax(p []float64) int {
	best := -1
	for i, v := range p {
		if best < 0 || v > p[best] {
			best = i
		}
	}
	return best
}

// Accuracy is the share of predictions equal to the truth.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}
