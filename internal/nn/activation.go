package nn

import (
	"fmt"
	"math"
	"strings"
)

// Activation selects the saturating nonlinearity applied to every hidden and output unit
type Activation int

const (
	// Sigmoid is the logistic function, range (0, 1)
	Sigmoid Activation = iota
	// Tanh is the hyperbolic tangent, range (-1, 1)
	Tanh
)

// ParseActivation maps a config name to an Activation
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(name) {
	case "sigmoid", "logistic":
		return Sigmoid, nil
	case "tanh":
		return Tanh, nil
	default:
		return Sigmoid, fmt.Errorf("unknown activation function: %s", name)
	}
}

func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	default:
		return "unknown"
	}
}

// Apply evaluates the activation at x
func (a Activation) Apply(x float64) float64 {
	if a == Tanh {
		return math.Tanh(x)
	}
	// exp overflows to +Inf for very negative x, which still yields 0
	return 1.0 / (1.0 + math.Exp(-x))
}

// Range returns the open bounds of the activation
func (a Activation) Range() (lo, hi float32) {
	if a == Tanh {
		return -1, 1
	}
	return 0, 1
}

// Output converts x to float32 kept strictly inside Range, since saturated
// values round onto the bounds
func (a Activation) Output(x float64) float32 {
	lo, hi := a.Range()
	v := float32(x)
	if v <= lo {
		return math.Nextafter32(lo, hi)
	}
	if v >= hi {
		return math.Nextafter32(hi, lo)
	}
	return v
}
