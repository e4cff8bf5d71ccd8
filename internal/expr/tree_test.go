package expr

import (
	"math/rand"
	"testing"
)

func testSet(t *testing.T) *PrimitiveSet {
	t.Helper()
	ps, err := NewPrimitiveSet(Config{Dims: 2, Constants: 1, TimeDependent: true})
	if err != nil {
		t.Fatalf("new primitive set: %v", err)
	}
	return ps
}

func primByName(t *testing.T, ps *PrimitiveSet, name string) *Primitive {
	t.Helper()
	prims := ps.Primitives()
	for i := range prims {
		if prims[i].Name == name {
			return &prims[i]
		}
	}
	t.Fatalf("primitive not found: %s", name)
	return nil
}

func TestNewPrimitiveSetArgLayout(t *testing.T) {
	ps := testSet(t)
	if ps.NumArgs() != 4 {
		t.Fatalf("expected 4 argument slots, got %d", ps.NumArgs())
	}
	want := []string{"x0", "x1", "c0", "t"}
	for i, name := range want {
		if ps.ArgName(i) != name {
			t.Fatalf("slot %d: want %s got %s", i, name, ps.ArgName(i))
		}
	}
}

func TestNewPrimitiveSetRejectsBadConfig(t *testing.T) {
	if _, err := NewPrimitiveSet(Config{Dims: 0}); err == nil {
		t.Fatal("expected error for zero dims")
	}
	if _, err := NewPrimitiveSet(Config{Dims: 2, Constants: -1}); err == nil {
		t.Fatal("expected error for negative constants")
	}
}

func TestTreeHeightAndSearchSubtree(t *testing.T) {
	ps := testSet(t)
	mul := primByName(t, ps, "mul")
	sin := primByName(t, ps, "sin")

	// mul(x0, sin(x1))
	tree := Tree{
		{Prim: mul},
		{Slot: 0},
		{Prim: sin},
		{Slot: 1},
	}
	if err := tree.Validate(ps); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if h := tree.Height(); h != 2 {
		t.Fatalf("height: want 2 got %d", h)
	}
	if end := tree.SearchSubtree(2); end != 4 {
		t.Fatalf("subtree of sin: want end 4 got %d", end)
	}
	if end := tree.SearchSubtree(0); end != len(tree) {
		t.Fatalf("subtree of root: want %d got %d", len(tree), end)
	}

	single := Tree{{Slot: 1}}
	if h := single.Height(); h != 0 {
		t.Fatalf("single-node height: want 0 got %d", h)
	}
}

func TestTreeString(t *testing.T) {
	ps := testSet(t)
	mul := primByName(t, ps, "mul")
	sin := primByName(t, ps, "sin")

	tree := Tree{{Prim: mul}, {Slot: 0}, {Prim: sin}, {Slot: 3}}
	if got := tree.String(ps); got != "mul(x0, sin(t))" {
		t.Fatalf("render: got %q", got)
	}
}

func TestValidateRejectsMalformedTrees(t *testing.T) {
	ps := testSet(t)
	mul := primByName(t, ps, "mul")

	if err := (Tree{}).Validate(ps); err == nil {
		t.Fatal("expected error for empty tree")
	}
	if err := (Tree{{Prim: mul}, {Slot: 0}}).Validate(ps); err == nil {
		t.Fatal("expected error for truncated tree")
	}
	if err := (Tree{{Slot: 0}, {Slot: 1}}).Validate(ps); err == nil {
		t.Fatal("expected error for dangling node")
	}
	if err := (Tree{{Slot: 9}}).Validate(ps); err == nil {
		t.Fatal("expected error for out-of-range slot")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ps := testSet(t)
	rng := rand.New(rand.NewSource(7))
	tree, err := Generate(rng, ps, 1, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	clone := tree.Clone()
	clone[0] = Node{Slot: 0}
	if clone[0] == tree[0] && !tree[0].IsTerminal() {
		t.Fatal("clone shares backing storage with original")
	}
}
