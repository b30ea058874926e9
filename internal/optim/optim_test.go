package optim_test

import (
	"math/rand/v2"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/optim"
	"github.com/born-ml/tensorjo/internal/tensor"
)

func scalar(t *testing.T, n *autodiff.Node) float64 {
	t.Helper()
	return must.M1(n.Value().Item())
}

// square builds (x - target)² and returns x and the objective.
func square(g *autodiff.Graph, start, target float64) (*autodiff.Node, *autodiff.Node) {
	x := must.M1(g.Var(start, autodiff.Named("x")))
	diff := must.M1(g.Sub(x, target))
	return x, must.M1(g.Mul(diff, diff))
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x := must.M1(g.Var(2.0))
	sgd := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1})

	require.NoError(t, sgd.Step([]*tensor.Tensor{tensor.Scalar(1)}))
	assert.InDelta(t, 1.9, scalar(t, x), 1e-12)
	assert.InDelta(t, 0.1, sgd.GetLR(), 0)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x := must.M1(g.Var(1.0))
	sgd := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	require.NoError(t, sgd.Step([]*tensor.Tensor{tensor.Scalar(1)}))
	assert.InDelta(t, 0.9, scalar(t, x), 1e-12) // v = 1

	require.NoError(t, sgd.Step([]*tensor.Tensor{tensor.Scalar(1)}))
	assert.InDelta(t, 0.71, scalar(t, x), 1e-12) // v = 0.9 + 1
}

func TestSGD_Defaults(t *testing.T) {
	sgd := optim.NewSGD(nil, optim.SGDConfig{})
	assert.InDelta(t, 0.01, sgd.GetLR(), 0)

	sgd.SetLR(0.5)
	assert.InDelta(t, 0.5, sgd.GetLR(), 0)
}

func TestSGD_StateDict(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x := must.M1(g.Var([]float64{1, 2}))
	sgd := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	require.NoError(t, sgd.Step([]*tensor.Tensor{must.M1(tensor.From([]float64{1, -1}))}))

	state := sgd.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.Equal(t, []float64{1, -1}, state["velocity.0"].Data())

	restored := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	require.NoError(t, restored.LoadStateDict(state))
	require.NoError(t, restored.Step([]*tensor.Tensor{must.M1(tensor.From([]float64{0, 0}))}))
	// velocity = 0.5 * [1, -1]
	assert.InDeltaSlice(t, []float64{0.85, 2.15}, x.Value().Data(), 1e-12)

	bad := map[string]*tensor.Tensor{"velocity.0": tensor.Scalar(1)}
	assert.ErrorIs(t, restored.LoadStateDict(bad), tensor.ErrValidation)

	plain := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{})
	assert.Empty(t, plain.StateDict())
}

func TestSGD_StepValidation(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x := must.M1(g.Var([]float64{1, 2}))
	y := must.M1(g.Var(3.0))
	sgd := optim.NewSGD([]*autodiff.Node{x, y}, optim.SGDConfig{LR: 1})

	assert.ErrorIs(t, sgd.Step([]*tensor.Tensor{tensor.Scalar(1)}), tensor.ErrValidation)
	assert.ErrorIs(t, sgd.Step([]*tensor.Tensor{tensor.Scalar(1), tensor.Scalar(1)}), tensor.ErrValidation)

	// A nil gradient leaves its param untouched.
	require.NoError(t, sgd.Step([]*tensor.Tensor{nil, tensor.Scalar(1)}))
	assert.Equal(t, []float64{1, 2}, x.Value().Data())
	assert.InDelta(t, 2.0, scalar(t, y), 0)
}

// TestAdam_FirstStep checks the first update moves by lr against the gradient sign.
func TestAdam_FirstStep(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x := must.M1(g.Var([]float64{1, 1}))
	adam := optim.NewAdam([]*autodiff.Node{x}, optim.AdamConfig{LR: 0.1})

	require.NoError(t, adam.Step([]*tensor.Tensor{must.M1(tensor.From([]float64{2, -0.5}))}))
	assert.InDeltaSlice(t, []float64{0.9, 1.1}, x.Value().Data(), 1e-6)
	assert.Equal(t, 1, adam.GetTimestep())
}

func TestAdam_Defaults(t *testing.T) {
	adam := optim.NewAdam(nil, optim.AdamConfig{})
	assert.InDelta(t, 0.001, adam.GetLR(), 0)
	adam.SetLR(0.01)
	assert.InDelta(t, 0.01, adam.GetLR(), 0)
}

func TestMinimize_LinearRegression(t *testing.T) {
	g := autodiff.New(autodiff.Config{Name: "linreg"})
	x := must.M1(g.Constant(must.M1(tensor.Reshape(must.M1(tensor.Arange(0, 10)), tensor.Shape{1, 10}))))
	y := must.M1(g.Add(x, 5.0))
	rng := rand.New(rand.NewPCG(3, 11))
	a := must.M1(g.Var([][]float64{{rng.Float64()*2 - 1}}, autodiff.Named("a")))
	b := must.M1(g.Var([][]float64{{rng.Float64()*2 - 1}}, autodiff.Named("b")))
	loss := must.M1(g.MSE(must.M1(g.Add(must.M1(g.Mul(a, x)), b)), y))

	var history []float64
	sgd := optim.NewSGD([]*autodiff.Node{a, b}, optim.SGDConfig{LR: 1e-2})
	err := optim.Minimize(sgd, loss, optim.RunConfig{
		Rounds:  1200,
		OnRound: func(round int, objective float64) { history = append(history, objective) },
	})
	require.NoError(t, err)

	require.Len(t, history, 1200)
	assert.Less(t, history[len(history)-1], history[0])
	assert.InDelta(t, 1.0, scalar(t, a), 0.05)
	assert.InDelta(t, 5.0, scalar(t, b), 0.05)
}

func TestMinimize_Adam(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x, objective := square(g, 0, 3)
	adam := optim.NewAdam([]*autodiff.Node{x}, optim.AdamConfig{LR: 0.1})

	require.NoError(t, optim.Minimize(adam, objective, optim.RunConfig{Rounds: 1000}))
	assert.InDelta(t, 3.0, scalar(t, x), 0.1)
}

func TestMaximize(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x, sq := square(g, 0, 3)
	objective := must.M1(g.Sub(0.0, sq)) // -(x-3)²

	rounds := 0
	sgd := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1})
	err := optim.Maximize(sgd, objective, optim.RunConfig{
		OnRound: func(round int, _ float64) { rounds = round },
	})
	require.NoError(t, err)

	assert.Equal(t, 100, rounds)
	assert.InDelta(t, 3.0, scalar(t, x), 1e-6)
}

func TestMinimize_DetachedObjective(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x, objective := square(g, 0, 3)
	g.Clear()

	err := optim.Minimize(optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{}), objective, optim.RunConfig{})
	assert.ErrorIs(t, err, autodiff.ErrNotFound)
}
