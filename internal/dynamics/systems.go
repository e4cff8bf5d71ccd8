// Package dynamics provides reference dynamical systems with analytic
// right-hand sides, used to produce training trajectories for the CLI and the
// test fixtures.
package dynamics

import "fmt"

// System is a deterministic first-order ODE system.
type System interface {
	Name() string
	Dims() int
	Derivative(t float64, x []float64) []float64
	DefaultInitial() []float64
}

// LinearOscillator is the damped 2-D linear system
// dx0/dt = a*x0 + b*x1, dx1/dt = -b*x0 + a*x1.
type LinearOscillator struct {
	A, B float64
}

func NewLinearOscillator() LinearOscillator {
	return LinearOscillator{A: -0.1, B: 2.0}
}

func (LinearOscillator) Name() string { return "linear2d" }
func (LinearOscillator) Dims() int    { return 2 }

func (s LinearOscillator) Derivative(_ float64, x []float64) []float64 {
	return []float64{s.A*x[0] + s.B*x[1], -s.B*x[0] + s.A*x[1]}
}

func (LinearOscillator) DefaultInitial() []float64 { return []float64{2, 0} }

// VanDerPol is the Van der Pol oscillator with nonlinearity mu.
type VanDerPol struct {
	Mu float64
}

func NewVanDerPol() VanDerPol { return VanDerPol{Mu: 1.0} }

func (VanDerPol) Name() string { return "vanderpol" }
func (VanDerPol) Dims() int    { return 2 }

func (s VanDerPol) Derivative(_ float64, x []float64) []float64 {
	return []float64{x[1], s.Mu*(1-x[0]*x[0])*x[1] - x[0]}
}

func (VanDerPol) DefaultInitial() []float64 { return []float64{2, 0} }

// Lorenz is the Lorenz attractor with the classic chaotic parameters.
type Lorenz struct {
	Sigma, Rho, Beta float64
}

func NewLorenz() Lorenz { return Lorenz{Sigma: 10, Rho: 28, Beta: 8.0 / 3.0} }

func (Lorenz) Name() string { return "lorenz" }
func (Lorenz) Dims() int    { return 3 }

func (s Lorenz) Derivative(_ float64, x []float64) []float64 {
	return []float64{
		s.Sigma * (x[1] - x[0]),
		x[0]*(s.Rho-x[2]) - x[1],
		x[0]*x[1] - s.Beta*x[2],
	}
}

func (Lorenz) DefaultInitial() []float64 { return []float64{-8, 8, 27} }

// ByName resolves a reference system by its registered name.
func ByName(name string) (System, error) {
	switch name {
	case "linear2d":
		return NewLinearOscillator(), nil
	case "vanderpol":
		return NewVanDerPol(), nil
	case "lorenz":
		return NewLorenz(), nil
	default:
		return nil, fmt.Errorf("unknown system: %s", name)
	}
}
