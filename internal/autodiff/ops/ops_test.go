package ops_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
	"github.com/born-ml/tensorjo/internal/tensor"
)

const tol = 1e-6

func randTensor(rng *rand.Rand, shape tensor.Shape) *tensor.Tensor {
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	t, err := tensor.New(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

func elementwise(a, b *tensor.Tensor, f func(x, y float64) float64) []float64 {
	ad, bd := a.Data(), b.Data()
	out := make([]float64, len(ad))
	for i := range ad {
		out[i] = f(ad[i], bd[i])
	}
	return out
}

// TestElementwise_Forward checks forward against a plain elementwise loop.
func TestElementwise_Forward(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	shapes := []tensor.Shape{{}, {1}, {7}, {3, 4}, {2, 3, 4}}

	tests := []struct {
		name string
		ctor ops.BinaryConstructor
		f    func(x, y float64) float64
	}{
		{"addition", ops.Addition, func(x, y float64) float64 { return x + y }},
		{"subtraction", ops.Subtraction, func(x, y float64) float64 { return x - y }},
		{"multiplication", ops.Multiplication, func(x, y float64) float64 { return x * y }},
		{"division", ops.Division, func(x, y float64) float64 { return x / (y + ops.DivEpsilon) }},
	}
	for _, tt := range tests {
		for _, shape := range shapes {
			a, b := randTensor(rng, shape), randTensor(rng, shape)
			op, err := tt.ctor(tensor.Ones(shape), tensor.Ones(shape))
			require.NoError(t, err)
			assert.Equal(t, tt.name, op.Name())
			assert.Equal(t, shape, op.Shape())

			out, err := op.Forward(a, b)
			require.NoError(t, err)
			assert.InDeltaSlice(t, elementwise(a, b, tt.f), out.Data(), tol, "%s %v", tt.name, shape)
			assert.Same(t, out, op.Cache())
		}
	}
}

func TestDivOp_ZeroDenominator(t *testing.T) {
	op, err := ops.NewDivOp(tensor.Ones(tensor.Shape{2}), tensor.Zeros(tensor.Shape{2}))
	require.NoError(t, err)

	out := op.Cache().Data()
	for _, v := range out {
		assert.False(t, math.IsInf(v, 0), "division by zero must use epsilon")
		assert.InDelta(t, 1/ops.DivEpsilon, v, 1)
	}

	g, err := op.BackwardSecond()
	require.NoError(t, err)
	for _, v := range g.Data() {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}

// TestBackward_Analytic compares the backward passes with closed forms.
func TestBackward_Analytic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	shape := tensor.Shape{3, 4}
	a, b := randTensor(rng, shape), randTensor(rng, shape)

	ones := tensor.Ones(shape).Data()

	add, err := ops.NewAddOp(a, b)
	require.NoError(t, err)
	assertBackward(t, add, ones, ones)

	sub, err := ops.NewSubOp(a, b)
	require.NoError(t, err)
	assertBackward(t, sub, ones, tensor.Full(shape, -1).Data())

	mul, err := ops.NewMulOp(a, b)
	require.NoError(t, err)
	assertBackward(t, mul, b.Data(), a.Data())

	div, err := ops.NewDivOp(a, b)
	require.NoError(t, err)
	assertBackward(t, div,
		elementwise(a, b, func(_, y float64) float64 { return 1 / (y + ops.DivEpsilon) }),
		elementwise(a, b, func(x, y float64) float64 { return -x / (y*y + ops.DivEpsilon) }))
}

func assertBackward(t *testing.T, op ops.BinaryOp, first, second []float64) {
	t.Helper()
	g1, err := op.BackwardFirst()
	require.NoError(t, err)
	assert.InDeltaSlice(t, first, g1.Data(), tol, "%s first", op.Name())

	g2, err := op.BackwardSecond()
	require.NoError(t, err)
	assert.InDeltaSlice(t, second, g2.Data(), tol, "%s second", op.Name())
}

// TestBackward_FollowsLastForward checks that state is refreshed only by Forward.
func TestBackward_FollowsLastForward(t *testing.T) {
	op, err := ops.NewMulOp(tensor.Ones(tensor.Shape{2}), tensor.Ones(tensor.Shape{2}))
	require.NoError(t, err)

	_, err = op.Forward(tensor.MustFrom([]float64{2, 3}), tensor.MustFrom([]float64{5, 7}))
	require.NoError(t, err)

	g, err := op.BackwardFirst()
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7}, g.Data())

	// Calling backward again does not change anything.
	g, err = op.BackwardSecond()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, g.Data())
}

func TestIncompatibleShapes(t *testing.T) {
	a := tensor.Ones(tensor.Shape{2, 3})
	b := tensor.Ones(tensor.Shape{3, 2})

	for _, ctor := range []ops.BinaryConstructor{
		ops.Addition, ops.Subtraction, ops.Multiplication, ops.Division, ops.MSE,
	} {
		_, err := ctor(a, b)
		assert.ErrorIs(t, err, tensor.ErrValidation)
	}

	// Inner dimension mismatch.
	_, err := ops.NewDotOp(a, a)
	assert.ErrorIs(t, err, tensor.ErrValidation)
	_, err = ops.NewMatMulOp(a, a)
	assert.ErrorIs(t, err, tensor.ErrValidation)

	// Dot needs rank 2.
	_, err = ops.NewDotOp(tensor.Ones(tensor.Shape{3}), tensor.Ones(tensor.Shape{3}))
	assert.ErrorIs(t, err, tensor.ErrValidation)

	// MSE needs an axis 1.
	_, err = ops.NewMSEOp(tensor.Ones(tensor.Shape{3}), tensor.Ones(tensor.Shape{3}))
	assert.ErrorIs(t, err, tensor.ErrValidation)

	_, err = ops.NewMeanOp(tensor.Ones(tensor.Shape{3}), 1)
	assert.ErrorIs(t, err, tensor.ErrValidation)

	_, err = ops.NewSigmoidOp(nil)
	assert.ErrorIs(t, err, tensor.ErrValidation)
}

func TestCompatibleShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		n, m, p := 1+rng.Intn(5), 1+rng.Intn(5), 1+rng.Intn(5)
		a, b := tensor.Ones(tensor.Shape{n, m}), tensor.Ones(tensor.Shape{m, p})

		for _, ctor := range []ops.BinaryConstructor{ops.Addition, ops.Subtraction, ops.Multiplication, ops.Division, ops.MSE} {
			_, err := ctor(a, a)
			require.NoError(t, err)
			_, err = ctor(a, tensor.Scalar(2))
			require.NoError(t, err)
		}
		_, err := ops.NewDotOp(a, b)
		require.NoError(t, err)
		_, err = ops.NewMatMulOp(a, b)
		require.NoError(t, err)
	}
}

func TestDotOp(t *testing.T) {
	a := tensor.MustFrom([][]float64{{1, 2, 3}, {4, 5, 6}})
	b := tensor.MustFrom([][]float64{{7, 8}, {9, 10}, {11, 12}})

	op, err := ops.NewDotOp(a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, op.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, op.Cache().Data())

	// first[:, i] = sum(b[i, :])
	g1, err := op.BackwardFirst()
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, g1.Shape())
	assert.Equal(t, []float64{15, 19, 23, 15, 19, 23}, g1.Data())

	// second[i, :] = sum(a[:, i])
	g2, err := op.BackwardSecond()
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, g2.Shape())
	assert.Equal(t, []float64{5, 5, 7, 7, 9, 9}, g2.Data())

	// Upstream G = [[1, 0], [0, 0]] selects c[0, 0] = a[0, :] · b[:, 0].
	g := tensor.MustFrom([][]float64{{1, 0}, {0, 0}})
	ga, err := op.BackwardFirstFrom(g)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 9, 11, 0, 0, 0}, ga.Data())
	gb, err := op.BackwardSecondFrom(g)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 2, 0, 3, 0}, gb.Data())
}

func TestMatMulOp(t *testing.T) {
	a := tensor.MustFrom([][]float64{{1, 2}, {3, 4}})
	op, err := ops.NewMatMulOp(a, a)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 10, 15, 22}, op.Cache().Data())
	assert.Equal(t, "matmul", op.Name())

	_, err = op.BackwardFirst()
	assert.ErrorIs(t, err, ops.ErrNotImplemented)
	_, err = op.BackwardSecond()
	assert.ErrorIs(t, err, ops.ErrNotImplemented)

	_, err = ops.Chain(op, ops.First, tensor.Ones(tensor.Shape{2, 2}), a.Shape())
	assert.ErrorIs(t, err, ops.ErrNotImplemented)
}

func TestMSEOp(t *testing.T) {
	a := tensor.MustFrom([][]float64{{1, 2, 3, 4}})
	b := tensor.MustFrom([][]float64{{0, 0, 0, 0}})

	op, err := ops.NewMSEOp(a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1}, op.Shape())
	assert.InDeltaSlice(t, []float64{7.5}, op.Cache().Data(), tol)

	g1, err := op.BackwardFirst()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5, 2}, g1.Data(), tol)

	g2, err := op.BackwardSecond()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.5, -1, -1.5, -2}, g2.Data(), tol)

	// Two rows: upstream picks the second row only.
	rows := tensor.MustFrom([][]float64{{1, 1}, {2, 4}})
	op, err = ops.NewMSEOp(rows, tensor.Zeros(tensor.Shape{2, 2}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 10}, op.Cache().Data(), tol)
	g, err := op.BackwardFirstFrom(tensor.MustFrom([]float64{0, 1}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 2, 4}, g.Data(), tol)
}

func TestUnaryOps(t *testing.T) {
	x := tensor.MustFrom([]float64{-1, 0, 0.5, 2})
	xs := x.Data()

	tests := []struct {
		name    string
		ctor    ops.UnaryConstructor
		forward func(float64) float64
		deriv   func(float64) float64
	}{
		{"sigmoid", ops.Sigmoid,
			func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
			func(v float64) float64 { s := 1 / (1 + math.Exp(-v)); return s * (1 - s) }},
		{"sin", ops.Sin, math.Sin, math.Cos},
		{"cos", ops.Cos, math.Cos, func(v float64) float64 { return -math.Sin(v) }},
	}
	for _, tt := range tests {
		op, err := tt.ctor(tensor.Ones(x.Shape()))
		require.NoError(t, err)
		assert.Equal(t, tt.name, op.Name())

		out, err := op.Forward(x)
		require.NoError(t, err)
		g, err := op.BackwardFunctor()
		require.NoError(t, err)
		for i, v := range xs {
			assert.InDelta(t, tt.forward(v), out.Data()[i], tol, tt.name)
			assert.InDelta(t, tt.deriv(v), g.Data()[i], tol, tt.name)
		}
	}
}

func TestMeanOp(t *testing.T) {
	x := tensor.MustFrom([][]float64{{1, 2, 3}, {4, 5, 6}})
	op, err := ops.NewMeanOp(x, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, op.Cache().Data())
	assert.Equal(t, 1, op.Axis())

	g, err := op.BackwardFunctor()
	require.NoError(t, err)
	assert.InDeltaSlice(t, tensor.Full(x.Shape(), 1.0/3).Data(), g.Data(), tol)

	g, err = op.BackwardFunctorFrom(tensor.MustFrom([]float64{3, 0}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 0, 0, 0}, g.Data(), tol)

	ctor := ops.Mean(0)
	m0, err := ctor(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3.5, 4.5}, m0.Cache().Data())
}

func TestChain_ReducesBroadcast(t *testing.T) {
	// a(1, 1) * x(1, 4): the gradient for a sums over the broadcast axis.
	a := tensor.MustFrom([][]float64{{2}})
	x := tensor.MustFrom([][]float64{{0, 1, 2, 3}})

	op, err := ops.NewMulOp(a, x)
	require.NoError(t, err)

	upstream := tensor.Ones(op.Shape())
	ga, err := ops.Chain(op, ops.First, upstream, a.Shape())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1}, ga.Shape())
	assert.Equal(t, []float64{6}, ga.Data())

	gx, err := ops.Chain(op, ops.Second, upstream, x.Shape())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2}, gx.Data())
}

func TestBackward_Slots(t *testing.T) {
	add, err := ops.NewAddOp(tensor.Scalar(1), tensor.Scalar(2))
	require.NoError(t, err)
	_, err = ops.Backward(add, ops.Only)
	assert.Error(t, err)

	sin, err := ops.NewSinOp(tensor.Scalar(1))
	require.NoError(t, err)
	_, err = ops.Backward(sin, ops.First)
	assert.Error(t, err)

	g, err := ops.Backward(sin, ops.Only)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(1), g.Data()[0], tol)

	assert.Equal(t, "first", ops.First.String())
	assert.Equal(t, "second", ops.Second.String())
	assert.Equal(t, "only", ops.Only.String())
}
