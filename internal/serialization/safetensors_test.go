package serialization

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tracegrad/internal/tensor"
)

func TestSafeTensors_WriteRead(t *testing.T) {
	tensors := map[string]*tensor.Tensor{
		"0.W": tensor.MustFromSlice([]float64{1, -2, 3.5, 4, 5, 6}, tensor.Shape{2, 3}),
		"0.b": tensor.MustFromSlice([]float64{0.25, -0.5, 1e-9}, tensor.Shape{3}),
		"s":   tensor.Scalar(42),
	}
	metadata := map[string]string{"epoch": "3"}

	var buf bytes.Buffer
	require.NoError(t, WriteSafeTensors(&buf, tensors, metadata))

	got, gotMeta, err := ReadSafeTensors(&buf)
	require.NoError(t, err)
	assert.Equal(t, metadata, gotMeta)
	require.Len(t, got, 3)
	for name, want := range tensors {
		require.Contains(t, got, name)
		assert.True(t, want.Shape().Equal(got[name].Shape()), name)
		assert.Equal(t, want.Data(), got[name].Data(), name)
	}
}

func TestSafeTensors_HeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSafeTensors(&buf, map[string]*tensor.Tensor{
		"b": tensor.Ones(tensor.Shape{1}),
		"a": tensor.Ones(tensor.Shape{2}),
	}, nil))

	size := binary.LittleEndian.Uint64(buf.Bytes()[:8])
	header := string(buf.Bytes()[8 : 8+size])
	assert.Contains(t, header, `"a":{"dtype":"F64","shape":[2],"data_offsets":[0,16]}`)
	assert.Contains(t, header, `"b":{"dtype":"F64","shape":[1],"data_offsets":[16,24]}`)
	assert.NotContains(t, header, metadataKey)
	assert.Equal(t, int(8+size+24), buf.Len())
}

func TestSafeTensors_InvalidName(t *testing.T) {
	for _, name := range []string{"", "../etc", "a/b", metadataKey} {
		err := WriteSafeTensors(&bytes.Buffer{}, map[string]*tensor.Tensor{name: tensor.Scalar(1)}, nil)
		assert.ErrorIs(t, err, ErrInvalidTensorName, "name %q", name)
	}
}

func rawFile(header string, data []byte) *bytes.Reader {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(header)))
	buf.WriteString(header)
	buf.Write(data)
	return bytes.NewReader(buf.Bytes())
}

func TestReadSafeTensors_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		data   []byte
		want   error
	}{
		{
			name:   "dtype",
			header: `{"x":{"dtype":"F32","shape":[1],"data_offsets":[0,4]}}`,
			data:   make([]byte, 4),
			want:   ErrUnsupportedDType,
		},
		{
			name:   "out of bounds",
			header: `{"x":{"dtype":"F64","shape":[2],"data_offsets":[0,16]}}`,
			data:   make([]byte, 8),
			want:   ErrCorrupt,
		},
		{
			name: "overlap",
			header: `{"x":{"dtype":"F64","shape":[2],"data_offsets":[0,16]},` +
				`"y":{"dtype":"F64","shape":[1],"data_offsets":[8,16]}}`,
			data: make([]byte, 16),
			want: ErrCorrupt,
		},
		{
			name:   "size",
			header: `{"x":{"dtype":"F64","shape":[3],"data_offsets":[0,16]}}`,
			data:   make([]byte, 16),
			want:   ErrCorrupt,
		},
		{
			name:   "overflowing shape",
			header: `{"x":{"dtype":"F64","shape":[4611686018427387904,4],"data_offsets":[0,0]}}`,
			want:   ErrCorrupt,
		},
		{
			name:   "zero dimension",
			header: `{"x":{"dtype":"F64","shape":[0,3],"data_offsets":[0,0]}}`,
			want:   ErrCorrupt,
		},
		{
			name:   "json",
			header: `{"x":`,
			want:   ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadSafeTensors(rawFile(tt.header, tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadSafeTensors_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1))
	_, _, err := ReadSafeTensors(&buf)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestReadSafeTensors_Truncated(t *testing.T) {
	_, _, err := ReadSafeTensors(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
