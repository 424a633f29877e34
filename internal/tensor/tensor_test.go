package tensor

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{}.Validate())
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
	assert.Error(t, Shape{1 << 62, 4}.Validate(), "element count overflows")

	_, err := FromSlice(nil, Shape{1 << 62, 4})
	assert.Error(t, err)
}

func TestShape_Strides(t *testing.T) {
	if diff := cmp.Diff([]int{12, 4, 1}, Shape{2, 3, 4}.Strides()); diff != "" {
		t.Errorf("Strides() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Shape{}.Strides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b Shape
		want Shape
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}},
		{Shape{5}, Shape{3, 5}, Shape{3, 5}},
		{Shape{}, Shape{2, 2}, Shape{2, 2}},
		{Shape{2, 3}, Shape{2, 3}, Shape{2, 3}},
	}

	for _, tt := range tests {
		got, err := BroadcastShapes(tt.a, tt.b)
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want), "BroadcastShapes(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
	}

	_, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromSlice(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(src, Shape{2, 3})
	require.NoError(t, err)

	src[0] = 100
	assert.Equal(t, 1.0, x.At(0, 0), "FromSlice must copy its input")
	assert.Equal(t, 6.0, x.At(1, 2))

	_, err = FromSlice(src, Shape{4, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = FromSlice(nil, Shape{0})
	assert.Error(t, err)
}

func TestCreation(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Zeros(Shape{3}).Data())
	assert.Equal(t, []float64{1, 1}, Ones(Shape{2}).Data())
	assert.Equal(t, []float64{7, 7, 7, 7}, Full(Shape{2, 2}, 7).Data())
	assert.Equal(t, 3.5, Scalar(3.5).Item())
	assert.Panics(t, func() { Zeros(Shape{2, -1}) })
}

func TestRandn_Deterministic(t *testing.T) {
	a := Randn(Shape{4, 3}, rand.New(rand.NewPCG(1, 2)))
	b := Randn(Shape{4, 3}, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a.Data(), b.Data())
	assert.True(t, a.Shape().Equal(Shape{4, 3}))
}

func TestClone(t *testing.T) {
	x := MustFromSlice([]float64{1, 2}, Shape{2})
	c := x.Clone()
	c.Data()[0] = 9
	assert.Equal(t, 1.0, x.Data()[0])
}

func TestItem_PanicsOnVector(t *testing.T) {
	assert.Panics(t, func() { Ones(Shape{2}).Item() })
}

func TestString(t *testing.T) {
	assert.Equal(t, "Tensor[2][1 2]", MustFromSlice([]float64{1, 2}, Shape{2}).String())
	assert.Contains(t, Zeros(Shape{10}).String(), "(4 more)")
}
