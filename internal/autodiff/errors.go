package autodiff

import (
	"errors"
	"fmt"
)

// ErrContract marks programmer errors: states the caller was required to rule out.
// Every contract violation wraps it, so errors.Is(err, ErrContract) separates them from
// recoverable shape errors (tensor.ErrShapeMismatch) reported by the tensor kernels.
var ErrContract = errors.New("autodiff: contract violation")

var (
	// ErrReleased is returned when a node is reached after its last owner is gone.
	ErrReleased = fmt.Errorf("%w: node has no remaining owners", ErrContract)

	// ErrNoGradient is returned when a gradient is read before backward has run.
	ErrNoGradient = fmt.Errorf("%w: gradient has not been computed", ErrContract)
)
