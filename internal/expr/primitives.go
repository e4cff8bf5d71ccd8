package expr

import (
	"fmt"
	"math"
)

// Primitive is a named operation in the expression vocabulary. All primitives
// operate on float64 and return float64; arity is fixed per primitive.
type Primitive struct {
	Name  string
	Arity int
	Eval  func(args []float64) float64
}

// Config describes the input slots of a primitive set: state dimensions,
// symbolic constants, and an optional trailing time slot.
type Config struct {
	Dims          int
	Constants     int
	TimeDependent bool
}

// PrimitiveSet is the typed vocabulary trees are built from: the primitive
// operations plus the named argument slots. It is built once per run and
// shared read-only by every tree.
type PrimitiveSet struct {
	primitives []Primitive
	argNames   []string
	cfg        Config
}

// NewPrimitiveSet builds the generalized vocabulary: binary add and mul,
// unary sin, cos, and exp, over argument slots x0..x{dims-1}, c0..c{nc-1},
// and t when the system is time-dependent.
func NewPrimitiveSet(cfg Config) (*PrimitiveSet, error) {
	if cfg.Dims <= 0 {
		return nil, fmt.Errorf("dims must be > 0")
	}
	if cfg.Constants < 0 {
		return nil, fmt.Errorf("constants must be >= 0")
	}

	argNames := make([]string, 0, cfg.Dims+cfg.Constants+1)
	for i := 0; i < cfg.Dims; i++ {
		argNames = append(argNames, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < cfg.Constants; i++ {
		argNames = append(argNames, fmt.Sprintf("c%d", i))
	}
	if cfg.TimeDependent {
		argNames = append(argNames, "t")
	}

	return &PrimitiveSet{
		primitives: []Primitive{
			{Name: "add", Arity: 2, Eval: func(args []float64) float64 { return args[0] + args[1] }},
			{Name: "mul", Arity: 2, Eval: func(args []float64) float64 { return args[0] * args[1] }},
			{Name: "sin", Arity: 1, Eval: func(args []float64) float64 { return math.Sin(args[0]) }},
			{Name: "cos", Arity: 1, Eval: func(args []float64) float64 { return math.Cos(args[0]) }},
			{Name: "exp", Arity: 1, Eval: func(args []float64) float64 { return math.Exp(args[0]) }},
		},
		argNames: argNames,
		cfg:      cfg,
	}, nil
}

func (ps *PrimitiveSet) NumArgs() int        { return len(ps.argNames) }
func (ps *PrimitiveSet) Dims() int           { return ps.cfg.Dims }
func (ps *PrimitiveSet) Constants() int      { return ps.cfg.Constants }
func (ps *PrimitiveSet) TimeDependent() bool { return ps.cfg.TimeDependent }

// ArgName returns the display name of an argument slot.
func (ps *PrimitiveSet) ArgName(slot int) string {
	if slot < 0 || slot >= len(ps.argNames) {
		return fmt.Sprintf("arg%d", slot)
	}
	return ps.argNames[slot]
}

// Primitives returns the operation vocabulary. Callers must not modify it.
func (ps *PrimitiveSet) Primitives() []Primitive {
	return ps.primitives
}

func (ps *PrimitiveSet) primitivesWithArity(arity int) []*Primitive {
	out := make([]*Primitive, 0, len(ps.primitives))
	for i := range ps.primitives {
		if ps.primitives[i].Arity == arity {
			out = append(out, &ps.primitives[i])
		}
	}
	return out
}

// terminalRatio is the share of terminals in the combined vocabulary, used to
// bias the grow expansion toward leaves the way ramped half-and-half does.
func (ps *PrimitiveSet) terminalRatio() float64 {
	terminals := len(ps.argNames)
	return float64(terminals) / float64(terminals+len(ps.primitives))
}
