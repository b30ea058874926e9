package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	x, err := New([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 6, x.Size())
	assert.Equal(t, 2, x.Rank())
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 2.0, x.At(0, 1))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		shape Shape
	}{
		{"empty", nil, Shape{0}},
		{"length mismatch", []float64{1, 2, 3}, Shape{2, 2}},
		{"negative dim", []float64{1}, Shape{-1}},
		{"nan", []float64{1, math.NaN()}, Shape{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.data, tt.shape)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	data := []float64{1, 2}
	x, err := New(data, Shape{2})
	require.NoError(t, err)
	data[0] = 100
	assert.Equal(t, 1.0, x.At(0))

	out := x.Data()
	out[1] = 100
	assert.Equal(t, 2.0, x.At(1))
}

func TestItem(t *testing.T) {
	v, err := Scalar(3.5).Item()
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = Ones(Shape{2}).Item()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAllClose(t *testing.T) {
	a := MustFrom([]float64{1, 2, 3})
	b := MustFrom([]float64{1, 2, 3.0000001})
	assert.True(t, a.AllClose(b, 1e-6))
	assert.False(t, a.Equal(b))
	assert.False(t, a.AllClose(MustFrom([][]float64{{1, 2, 3}}), 1))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[[1 2] [3 4]]", MustFrom([][]float64{{1, 2}, {3, 4}}).String())
	assert.Equal(t, "5", Scalar(5).String())
	assert.Equal(t, "(2, 3)", Shape{2, 3}.String())
	assert.Equal(t, "(4,)", Shape{4}.String())
}

func TestCreation(t *testing.T) {
	assert.Equal(t, []float64{1, 1, 1, 1}, Ones(Shape{2, 2}).Data())
	assert.Equal(t, []float64{0, 0}, Zeros(Shape{2}).Data())
	assert.Equal(t, []float64{7, 7}, Full(Shape{2}, 7).Data())

	r, err := Arange(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, r.Data())

	_, err = Arange(3, 3)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Panics(t, func() { Full(Shape{0}, 1) })
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{}, Shape{2, 2}, Shape{2, 2}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "%v vs %v", tt.a, tt.b)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast)
	}
}
