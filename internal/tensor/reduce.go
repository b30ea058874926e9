package tensor

import "github.com/pkg/errors"

// Sum returns the sum of all elements.
func Sum(t *Tensor) float64 {
	var s float64
	for _, v := range t.data {
		s += v
	}
	return s
}

// Mean returns the mean of all elements.
func Mean(t *Tensor) float64 {
	return Sum(t) / float64(len(t.data))
}

// SumAxis sums t along axis, dropping that axis.
func SumAxis(t *Tensor, axis int) (*Tensor, error) {
	if axis < 0 || axis >= len(t.shape) {
		return nil, errors.Wrapf(ErrValidation, "SumAxis: axis %d out of range for shape %v", axis, t.shape)
	}
	outer, n, inner := splitAxis(t.shape, axis)
	data := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			base := (o*n + k) * inner
			for i := 0; i < inner; i++ {
				data[o*inner+i] += t.data[base+i]
			}
		}
	}
	return wrap(data, t.shape.Without(axis)), nil
}

// MeanAxis averages t along axis, dropping that axis.
func MeanAxis(t *Tensor, axis int) (*Tensor, error) {
	s, err := SumAxis(t, axis)
	if err != nil {
		return nil, errors.WithMessage(err, "MeanAxis")
	}
	return Scale(s, 1/float64(t.shape[axis])), nil
}

// ExpandAxis inserts axis with size n, repeating t along it.
// It is the inverse shape transform of SumAxis.
func ExpandAxis(t *Tensor, axis, n int) (*Tensor, error) {
	if axis < 0 || axis > len(t.shape) || n <= 0 {
		return nil, errors.Wrapf(ErrValidation, "ExpandAxis: cannot insert axis %d of size %d into %v", axis, n, t.shape)
	}
	shape := make(Shape, 0, len(t.shape)+1)
	shape = append(shape, t.shape[:axis]...)
	shape = append(shape, n)
	shape = append(shape, t.shape[axis:]...)

	outer, _, inner := splitAxis(shape, axis)
	data := make([]float64, shape.NumElements())
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			copy(data[(o*n+k)*inner:(o*n+k+1)*inner], t.data[o*inner:(o+1)*inner])
		}
	}
	return wrap(data, shape), nil
}

// ReduceTo sums a gradient computed in a broadcast shape back down to the
// shape of the input that was broadcast.
//
// Example:
//
//	Forward: a(3, 1) + b(3, 4) -> c(3, 4)  (a was broadcast along axis 1)
//	Backward: grad_c(3, 4) -> grad_a(3, 1) (sum along axis 1)
func ReduceTo(grad *Tensor, target Shape) (*Tensor, error) {
	if grad.shape.Equal(target) {
		return grad, nil
	}

	if target.NumElements() == 1 {
		return wrap([]float64{Sum(grad)}, target.Clone()), nil
	}

	if len(target) > len(grad.shape) {
		return nil, errors.Wrapf(ErrValidation, "ReduceTo: cannot reduce %v to %v", grad.shape, target)
	}

	// Sum leading dimensions the target does not have.
	result := grad
	var err error
	for len(result.shape) > len(target) {
		if result, err = SumAxis(result, 0); err != nil {
			return nil, err
		}
	}

	// Sum dimensions where the target is 1, keeping them.
	for i := range target {
		switch {
		case target[i] == result.shape[i]:
		case target[i] == 1:
			summed, err := SumAxis(result, i)
			if err != nil {
				return nil, err
			}
			if result, err = ExpandAxis(summed, i, 1); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Wrapf(ErrValidation, "ReduceTo: cannot reduce %v to %v", grad.shape, target)
		}
	}
	return result, nil
}

// splitAxis returns the element counts before, along and after axis.
func splitAxis(shape Shape, axis int) (outer, n, inner int) {
	outer, inner = 1, 1
	for _, d := range shape[:axis] {
		outer *= d
	}
	for _, d := range shape[axis+1:] {
		inner *= d
	}
	return outer, shape[axis], inner
}
