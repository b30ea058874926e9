package autodiff

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
)

func TestRemove_ConnectionToPrimitive(t *testing.T) {
	g := New(Config{Name: "corrupt"})
	a := must.M1(g.Var(1.0, Named("a")))
	b := must.M1(g.Var(2.0, Named("b")))
	a.c = append(a.c, Connection{Target: b.id, Slot: ops.First})

	err := g.Validate()
	assert.ErrorIs(t, err, ErrInvariantViolation)

	err = g.Remove(a)
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), `connection points at primitive "b"`)
	assert.Contains(t, err.Error(), `"a" (primitive, id 0) connections=[1:first->"b" (primitive)]`)
}

func TestRemove_MonoidFedThroughUnarySlot(t *testing.T) {
	g := New(Config{})
	a := must.M1(g.Var(1.0, Named("a")))
	b := must.M1(g.Var(2.0, Named("b")))
	m := must.M1(g.Add(a, b, Named("m")))
	a.c[0].Slot = ops.Only

	assert.ErrorIs(t, g.Validate(), ErrInvariantViolation)
	err := g.Remove(a)
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), `monoid "m" is fed through slot only`)
	assert.False(t, m.removed)
}

func TestValidate_DetectsCycle(t *testing.T) {
	g := New(Config{})
	a := must.M1(g.Var(1.0))
	s := must.M1(g.Sin(a))
	c := must.M1(g.Cos(s))

	// Rewire s to read from its own consumer.
	a.c = nil
	s.m1 = c.id
	c.c = append(c.c, Connection{Target: s.id, Slot: ops.Only})

	assert.ErrorIs(t, g.Validate(), ErrInvariantViolation)
	_, err := c.Output()
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestGradient_MemoKeyedBySweepAndTarget(t *testing.T) {
	g := New(Config{})
	a := must.M1(g.Var(3.0))
	s := must.M1(g.Mul(a, a))
	c := must.M1(g.Mul(s, 2.0))

	grads := must.M1(g.Gradients(c, a))
	assert.InDelta(t, 12.0, must.M1(grads[0].Item()), 1e-12)
	assert.True(t, g.memoized(a, c))

	// A different target in the same sweep does not reuse a's memo.
	grad := must.M1(a.GradientWRT(s))
	assert.InDelta(t, 6.0, must.M1(grad.Item()), 1e-12)
	assert.False(t, g.memoized(a, c))

	grads = must.M1(g.Gradients(c, a))
	assert.InDelta(t, 12.0, must.M1(grads[0].Item()), 1e-12)
}

func TestCache_DependencySets(t *testing.T) {
	g := New(Config{})
	a := must.M1(g.Var(1.0))
	b := must.M1(g.Var(2.0))
	s := must.M1(g.Sin(a))
	m := must.M1(g.Add(s, b))
	g.Cache()

	assert.ElementsMatch(t, []NodeID{s.id, m.id}, a.deps)
	assert.ElementsMatch(t, []NodeID{m.id}, b.deps)

	c := must.M1(g.Cos(b))
	assert.ElementsMatch(t, []NodeID{m.id, c.id}, b.deps)
	assert.ElementsMatch(t, []NodeID{s.id, m.id}, a.deps)

	g.NoCache()
	assert.Nil(t, a.deps)
}
