package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/tensorjo/internal/parallel"
)

// batches splits the matrices of a batched product across CPUs.
var batches = parallel.Default(4)

// MatMulShape returns the output shape of MatMul(a, b) without computing it.
//
// Both operands must have rank >= 2. Rank-2 operands multiply as matrices;
// higher ranks are batches of matrices and their leading dimensions must match.
func MatMulShape(a, b Shape) (Shape, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, errors.Wrapf(ErrValidation, "matmul needs rank >= 2 operands, got %v and %v", a, b)
	}
	if len(a) != len(b) {
		return nil, errors.Wrapf(ErrValidation, "matmul operands must have equal rank, got %v and %v", a, b)
	}
	batch := len(a) - 2
	if !a[:batch].Equal(b[:batch]) {
		return nil, errors.Wrapf(ErrValidation, "matmul batch dimensions differ: %v vs %v", a, b)
	}
	if a[batch+1] != b[batch] {
		return nil, errors.Wrapf(ErrValidation, "matmul inner dimensions differ: %v @ %v", a, b)
	}
	out := a[:batch].Clone()
	return append(out, a[batch], b[batch+1]), nil
}

// MatMul computes the (batched) matrix product a @ b.
func MatMul(a, b *Tensor) (*Tensor, error) {
	out, err := MatMulShape(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	batch := len(out) - 2
	m, k, n := a.shape[batch], a.shape[batch+1], b.shape[batch+1]

	count := Shape(out[:batch]).NumElements()
	data := make([]float64, out.NumElements())
	parallel.For(count, batches, func(i int) {
		// gonum reads straight from the backing slices; neither is written.
		am := mat.NewDense(m, k, a.data[i*m*k:(i+1)*m*k])
		bm := mat.NewDense(k, n, b.data[i*k*n:(i+1)*k*n])
		mat.NewDense(m, n, data[i*m*n:(i+1)*m*n]).Mul(am, bm)
	})
	return wrap(data, out), nil
}

// Transpose swaps the last two axes of a rank >= 2 tensor.
func Transpose(t *Tensor) (*Tensor, error) {
	if len(t.shape) < 2 {
		return nil, errors.Wrapf(ErrValidation, "Transpose needs rank >= 2, got %v", t.shape)
	}
	batch := len(t.shape) - 2
	r, c := t.shape[batch], t.shape[batch+1]
	count := Shape(t.shape[:batch]).NumElements()

	data := make([]float64, len(t.data))
	parallel.For(count, batches, func(i int) {
		src := mat.NewDense(r, c, t.data[i*r*c:(i+1)*r*c])
		mat.NewDense(c, r, data[i*r*c:(i+1)*r*c]).Copy(src.T())
	})
	shape := t.shape.Clone()
	shape[batch], shape[batch+1] = c, r
	return wrap(data, shape), nil
}
