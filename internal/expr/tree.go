package expr

import (
	"fmt"
	"strings"
)

// Node is one element of a prefix-ordered expression tree: either a primitive
// call or a reference to an input argument slot (terminal).
type Node struct {
	Prim *Primitive
	Slot int
}

func (n Node) IsTerminal() bool { return n.Prim == nil }

func (n Node) Arity() int {
	if n.Prim == nil {
		return 0
	}
	return n.Prim.Arity
}

// Tree is an expression stored in prefix (depth-first, left-to-right) order.
// A single terminal node is a legal tree of height 0.
type Tree []Node

func (t Tree) Clone() Tree {
	return append(Tree(nil), t...)
}

// Height is the number of edges on the longest root-to-leaf path.
func (t Tree) Height() int {
	max := 0
	stack := []int{0}
	for _, node := range t {
		depth := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if depth > max {
			max = depth
		}
		for i := 0; i < node.Arity(); i++ {
			stack = append(stack, depth+1)
		}
	}
	return max
}

// SearchSubtree returns the end index (exclusive) of the subtree rooted at
// begin.
func (t Tree) SearchSubtree(begin int) int {
	end := begin
	pending := 1
	for pending > 0 {
		pending += t[end].Arity() - 1
		end++
	}
	return end
}

// Validate checks the prefix structure: every slot reference is in range for
// the primitive set and the node sequence forms exactly one tree.
func (t Tree) Validate(ps *PrimitiveSet) error {
	if len(t) == 0 {
		return fmt.Errorf("empty tree")
	}
	pending := 1
	for i, node := range t {
		if pending <= 0 {
			return fmt.Errorf("dangling node at index %d", i)
		}
		if node.IsTerminal() && (node.Slot < 0 || node.Slot >= ps.NumArgs()) {
			return fmt.Errorf("argument slot out of range at index %d: %d", i, node.Slot)
		}
		pending += node.Arity() - 1
	}
	if pending != 0 {
		return fmt.Errorf("truncated tree: %d arguments missing", pending)
	}
	return nil
}

// String renders the tree in call notation, e.g. "mul(x0, sin(x1))".
func (t Tree) String(ps *PrimitiveSet) string {
	var sb strings.Builder
	t.render(&sb, ps, 0)
	return sb.String()
}

func (t Tree) render(sb *strings.Builder, ps *PrimitiveSet, pos int) int {
	node := t[pos]
	if node.IsTerminal() {
		sb.WriteString(ps.ArgName(node.Slot))
		return pos + 1
	}
	sb.WriteString(node.Prim.Name)
	sb.WriteByte('(')
	next := pos + 1
	for i := 0; i < node.Arity(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		next = t.render(sb, ps, next)
	}
	sb.WriteByte(')')
	return next
}
