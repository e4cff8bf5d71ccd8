package expr

import "fmt"

// Compile transforms a tree into a callable numeric function of the argument
// slots. The returned closure expects args of length ps.NumArgs(), laid out as
// state variables, then symbolic constants, then time when present.
func Compile(t Tree, ps *PrimitiveSet) (func(args []float64) float64, error) {
	if ps == nil {
		return nil, fmt.Errorf("primitive set is required")
	}
	if err := t.Validate(ps); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	fn, _ := compileAt(t, 0)
	return fn, nil
}

func compileAt(t Tree, pos int) (func(args []float64) float64, int) {
	node := t[pos]
	if node.IsTerminal() {
		slot := node.Slot
		return func(args []float64) float64 { return args[slot] }, pos + 1
	}

	operands := make([]func(args []float64) float64, node.Arity())
	next := pos + 1
	for i := range operands {
		operands[i], next = compileAt(t, next)
	}
	eval := node.Prim.Eval
	scratchLen := node.Arity()
	return func(args []float64) float64 {
		operandVals := make([]float64, scratchLen)
		for i, op := range operands {
			operandVals[i] = op(args)
		}
		return eval(operandVals)
	}, next
}
