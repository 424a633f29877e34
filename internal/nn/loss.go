package nn

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/autodiff/ops"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// MSE is commonly used for regression tasks where the goal is to predict
// continuous values.
//
// Example:
//
//	mse := nn.NewMSELoss(g)
//	loss, err := mse.Forward(predictions, targets)
//	err = g.Backward(loss)
type MSELoss struct {
	graph *autodiff.Graph
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss(g *autodiff.Graph) *MSELoss {
	return &MSELoss{graph: g}
}

// Forward records the loss. predictions and targets must have the same shape.
// The result is a 0-D tensor.
func (m *MSELoss) Forward(predictions, targets *autodiff.Handle) (*autodiff.Handle, error) {
	return ops.MeanSquaredError(m.graph, predictions, targets)
}
