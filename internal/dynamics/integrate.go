package dynamics

import "fmt"

// TimeGrid builds n evenly spaced time points spanning [t0, t1].
func TimeGrid(t0, t1 float64, n int) []float64 {
	t := make([]float64, n)
	if n == 1 {
		t[0] = t0
		return t
	}
	step := (t1 - t0) / float64(n-1)
	for i := range t {
		t[i] = t0 + float64(i)*step
	}
	return t
}

// Integrate advances the system from x0 over the time points with the classic
// fourth-order Runge-Kutta scheme.
func Integrate(sys System, x0 []float64, t []float64) ([][]float64, error) {
	if len(x0) != sys.Dims() {
		return nil, fmt.Errorf("initial condition has %d dims, want %d", len(x0), sys.Dims())
	}
	if len(t) < 2 {
		return nil, fmt.Errorf("at least 2 time points are required")
	}

	traj := make([][]float64, len(t))
	traj[0] = append([]float64(nil), x0...)
	for i := 1; i < len(t); i++ {
		traj[i] = rk4Step(sys, traj[i-1], t[i-1], t[i]-t[i-1])
	}
	return traj, nil
}

// Observe integrates the system and pairs the trajectory with its analytic
// derivatives at every sample.
func Observe(sys System, x0 []float64, t []float64) (x, xDot [][]float64, err error) {
	x, err = Integrate(sys, x0, t)
	if err != nil {
		return nil, nil, err
	}
	xDot = make([][]float64, len(x))
	for i := range x {
		xDot[i] = sys.Derivative(t[i], x[i])
	}
	return x, xDot, nil
}

func rk4Step(sys System, state []float64, t, h float64) []float64 {
	k1 := sys.Derivative(t, state)
	k2 := sys.Derivative(t+h/2, shifted(state, k1, h/2))
	k3 := sys.Derivative(t+h/2, shifted(state, k2, h/2))
	k4 := sys.Derivative(t+h, shifted(state, k3, h))

	next := make([]float64, len(state))
	for i := range next {
		next[i] = state[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}

func shifted(x, dx []float64, h float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = x[i] + h*dx[i]
	}
	return out
}
