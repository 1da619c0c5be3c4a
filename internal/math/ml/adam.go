package ml

import (
	"fmt"
	"math"
)

// Adam is the adaptive moment estimation optimizer.
// It keeps the first and second moment for every registered parameter slice,
// in the order the slices are passed to Update.
type Adam struct {
	rate    float64
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	m       [][]float64
	v       [][]float64
}

// NewAdam creates a new optimizer with the default decay rates.
func NewAdam(rate float64) *Adam {
	return &Adam{
		rate:    rate,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: epsilon,
	}
}

// Rate returns the learning rate.
func (a *Adam) Rate() float64 {
	return a.rate
}

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int {
	return a.t
}

// Update applies one optimisation step of the gradients onto the parameters.
func (a *Adam) Update(params, grads [][]float64) error {
	if len(params) != len(grads) {
		return fmt.Errorf("parameters and gradients do not align [ %d | %d ]", len(params), len(grads))
	}
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p))
			a.v[i] = make([]float64, len(p))
		}
	}
	if len(a.m) != len(params) {
		return fmt.Errorf("optimizer was set up for %d parameters, got %d", len(a.m), len(params))
	}
	a.t++
	// bias corrections folded into the step size
	rate := a.rate * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))
	for i, p := range params {
		g := grads[i]
		if len(p) != len(g) || len(p) != len(a.m[i]) {
			return fmt.Errorf("parameter %d size mismatch [ %d | %d | %d ]", i, len(p), len(g), len(a.m[i]))
		}
		m := a.m[i]
		v := a.v[i]
		for j := range p {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			p[j] -= rate * m[j] / (math.Sqrt(v[j]) + a.epsilon)
		}
	}
	return nil
}
