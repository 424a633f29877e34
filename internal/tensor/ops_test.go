package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_SameShape(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3}, Shape{3})
	b := MustFromSlice([]float64{10, 20, 30}, Shape{3})

	c, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33}, c.Data())
}

func TestAdd_Broadcast(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b := MustFromSlice([]float64{10, 20, 30}, Shape{3})

	c, err := Add(a, b)
	require.NoError(t, err)
	assert.True(t, c.Shape().Equal(Shape{2, 3}))
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, c.Data())
}

func TestSubMul(t *testing.T) {
	a := MustFromSlice([]float64{5, 6}, Shape{2})
	b := MustFromSlice([]float64{1, 2}, Shape{2})

	d, err := Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4}, d.Data())

	m, err := Mul(a, Scalar(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12}, m.Data())
}

func TestBinary_Mismatch(t *testing.T) {
	_, err := Add(Zeros(Shape{2, 3}), Zeros(Shape{2, 4}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScaleSum(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3}, Shape{3})
	assert.Equal(t, []float64{0.5, 1, 1.5}, Scale(a, 0.5).Data())

	s := Sum(a)
	assert.Empty(t, s.Shape())
	assert.Equal(t, 6.0, s.Item())
}

func TestMatMul(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b := MustFromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})

	c, err := MatMul(a, b)
	require.NoError(t, err)
	assert.True(t, c.Shape().Equal(Shape{2, 2}))
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Data())

	_, err = MatMul(a, a)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = MatMul(Zeros(Shape{3}), b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestTranspose(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	at, err := Transpose(a)
	require.NoError(t, err)
	assert.True(t, at.Shape().Equal(Shape{3, 2}))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, at.Data())

	_, err = Transpose(Zeros(Shape{2}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBroadcastTo(t *testing.T) {
	a := MustFromSlice([]float64{1, 2}, Shape{2})

	b, err := BroadcastTo(a, Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, b.Data())

	s, err := BroadcastTo(Scalar(4), Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4, 4}, s.Data())

	_, err = BroadcastTo(a, Shape{3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSumTo(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	cols, err := SumTo(a, Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())

	rows, err := SumTo(a, Shape{2, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 15}, rows.Data())

	all, err := SumTo(a, Shape{})
	require.NoError(t, err)
	assert.Equal(t, 21.0, all.Item())

	_, err = SumTo(a, Shape{4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAdd_BroadcastLarge(t *testing.T) {
	rows, cols := 400, 100
	a := Zeros(Shape{rows, cols})
	for i := range a.data {
		a.data[i] = float64(i / cols)
	}
	b := Zeros(Shape{cols})
	for j := range b.data {
		b.data[j] = float64(j) * 1000
	}

	c, err := Add(a, b)
	require.NoError(t, err)
	for i := 0; i < rows; i += 37 {
		for j := 0; j < cols; j += 13 {
			assert.Equal(t, float64(i)+float64(j)*1000, c.At(i, j))
		}
	}

	wide, err := BroadcastTo(b, Shape{rows, cols})
	require.NoError(t, err)
	back, err := SumTo(wide, Shape{cols})
	require.NoError(t, err)
	assert.InDelta(t, float64(rows)*99000, back.At(99), 1e-6)
}
