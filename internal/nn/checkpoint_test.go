package nn_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/nn"
	"github.com/born-ml/tracegrad/internal/tensor"
)

func TestStateDict_Keys(t *testing.T) {
	g := autodiff.NewGraph()
	layer, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 2, Bias: true, Rand: seeded()})
	require.NoError(t, err)
	layer.SetParams(g.NewLeaf("", tensor.Scalar(1)))

	state := nn.StateDict(layer)
	assert.Len(t, state, 3)
	assert.Contains(t, state, "W")
	assert.Contains(t, state, "b")
	assert.Contains(t, state, "param")

	// The state is a copy.
	state["W"].Data()[0] = 1e6
	assert.NotEqual(t, 1e6, layer.Weight().Data().At(0, 0))
}

// TestStateDict_SequentialKeys tests that layer parameters are prefixed with the
// layer index and repeated names stay distinct.
func TestStateDict_SequentialKeys(t *testing.T) {
	g := autodiff.NewGraph()
	hidden, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 2, Bias: true, Rand: seeded()})
	require.NoError(t, err)
	output, err := nn.NewLinear(g, 1, nn.LinearConfig{InSize: 3, Rand: seeded()})
	require.NoError(t, err)
	model := nn.NewSequential(g, hidden, output)
	model.SetParams(g.NewLeaf("scale", tensor.Scalar(2)))
	model.SetParams(g.NewLeaf("scale", tensor.Scalar(3)))

	state := nn.StateDict(model)
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"scale", "scale_1", "0.W", "0.b", "1.W"}, keys)
	assert.Equal(t, []float64{3}, state["scale_1"].Data())

	var buf bytes.Buffer
	require.NoError(t, nn.Save(&buf, model, nil))

	other := nn.NewSequential(g,
		mustLinear(t, g, 3, nn.LinearConfig{InSize: 2, Bias: true}),
		mustLinear(t, g, 1, nn.LinearConfig{InSize: 3}),
	)
	other.SetParams(g.NewLeaf("scale", tensor.Scalar(0)))
	other.SetParams(g.NewLeaf("scale", tensor.Scalar(0)))
	_, err = nn.Load(&buf, other)
	require.NoError(t, err)
	assert.Equal(t, output.Weight().Data().Data(), other.Layer(1).Parameters()[0].Data().Data())
	assert.Equal(t, []float64{2}, other.Parameters()[0].Data().Data())
}

// TestLoad_LazyIntoEager tests that a checkpoint taken from a lazily initialized
// layer loads into a layer built with its input size up front.
func TestLoad_LazyIntoEager(t *testing.T) {
	g := autodiff.NewGraph()
	lazy, err := nn.NewLinear(g, 3, nn.LinearConfig{Bias: true, Rand: seeded()})
	require.NoError(t, err)
	require.NoError(t, lazy.Bias().SetData(tensor.MustFromSlice([]float64{1, 2, 3}, tensor.Shape{3})))

	x := g.NewLeaf("x", tensor.Zeros(tensor.Shape{2, 4}))
	y, err := lazy.Call(x)
	require.NoError(t, err)
	y.Release()

	var buf bytes.Buffer
	require.NoError(t, nn.Save(&buf, lazy, nil))

	eager, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 4, Bias: true})
	require.NoError(t, err)
	_, err = nn.Load(&buf, eager)
	require.NoError(t, err)

	assert.Equal(t, lazy.Weight().Data().Data(), eager.Weight().Data().Data())
	assert.Equal(t, []float64{1, 2, 3}, eager.Bias().Data().Data())
}

func mustLinear(t *testing.T, g *autodiff.Graph, out int, cfg nn.LinearConfig) *nn.Linear {
	t.Helper()
	l, err := nn.NewLinear(g, out, cfg)
	require.NoError(t, err)
	return l
}

func TestSaveLoad(t *testing.T) {
	g := autodiff.NewGraph()
	src, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 4, Bias: true, Rand: seeded()})
	require.NoError(t, err)
	require.NoError(t, src.Bias().SetData(tensor.MustFromSlice([]float64{1, 2, 3}, tensor.Shape{3})))

	var buf bytes.Buffer
	require.NoError(t, nn.Save(&buf, src, map[string]string{"note": "test"}))

	dst, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 4, Bias: true})
	require.NoError(t, err)
	meta, err := nn.Load(&buf, dst)
	require.NoError(t, err)

	assert.Equal(t, "test", meta["note"])
	assert.Equal(t, src.Weight().Data().Data(), dst.Weight().Data().Data())
	assert.Equal(t, []float64{1, 2, 3}, dst.Bias().Data().Data())
}

func TestLoadStateDict_Mismatch(t *testing.T) {
	g := autodiff.NewGraph()
	layer, err := nn.NewLinear(g, 3, nn.LinearConfig{InSize: 4, Bias: true, Rand: seeded()})
	require.NoError(t, err)
	before := layer.Bias().Data().Clone()

	err = nn.LoadStateDict(layer, map[string]*tensor.Tensor{"W": tensor.Zeros(tensor.Shape{4, 3})})
	assert.Error(t, err)

	err = nn.LoadStateDict(layer, map[string]*tensor.Tensor{
		"W": tensor.Zeros(tensor.Shape{4, 3}),
		"b": tensor.Zeros(tensor.Shape{4}),
	})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.Equal(t, before.Data(), layer.Bias().Data().Data())
	assert.NotEqual(t, make([]float64, 12), layer.Weight().Data().Data(), "no partial load")

	// A lazy layer has no weight to load into yet.
	lazy, err := nn.NewLinear(g, 3, nn.LinearConfig{Bias: true})
	require.NoError(t, err)
	assert.Error(t, nn.LoadStateDict(lazy, nn.StateDict(layer)))
}
