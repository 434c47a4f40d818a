package embedding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Regularizer computes a weight penalty added to the training loss.
type Regularizer interface {
	Penalty(weights mat.Matrix) float64
}

// L1 penalizes Scale * sum(|w|).
type L1 struct {
	Scale float64
}

// Penalty implements Regularizer.
func (r L1) Penalty(weights mat.Matrix) float64 {
	var sum float64
	rows, cols := weights.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += math.Abs(weights.At(i, j))
		}
	}
	return r.Scale * sum
}

// L2 penalizes Scale * sum(w^2) / 2.
type L2 struct {
	Scale float64
}

// Penalty implements Regularizer.
func (r L2) Penalty(weights mat.Matrix) float64 {
	norm := mat.Norm(weights, 2) // Frobenius
	return r.Scale * norm * norm / 2
}

// NewRegularizer builds a regularizer by name: "l1" or "l2".
func NewRegularizer(name string, scale float64) (Regularizer, error) {
	switch name {
	case "l1":
		return L1{Scale: scale}, nil
	case "l2":
		return L2{Scale: scale}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegularizer, name)
	}
}
