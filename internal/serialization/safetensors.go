package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/born-ml/tracegrad/internal/tensor"
)

const (
	metadataKey = "__metadata__"
	dtypeF64    = "F64"
	f64Size     = 8
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to w.
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.NumElements() * f64Size)
		shape := make([]int64, len(t.Shape()))
		for i, dim := range t.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = SafeTensorHeader{
			DType:       dtypeF64,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		if err := binary.Write(w, binary.LittleEndian, tensors[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}
	return nil
}

// ReadSafeTensors reads every tensor and the metadata from r.
func ReadSafeTensors(r io.Reader) (map[string]*tensor.Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	var metadata map[string]string
	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("%w: metadata: %w", ErrCorrupt, err)
			}
			continue
		}
		meta, err := parseEntry(name, msg)
		if err != nil {
			return nil, nil, err
		}
		metas = append(metas, meta)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.Tensor, len(metas))
	for _, m := range metas {
		values := make([]float64, m.Size/f64Size)
		chunk := data[m.Offset : m.Offset+m.Size]
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*f64Size:]))
		}
		t, err := tensor.FromSlice(values, m.Shape)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", m.Name, err)
		}
		tensors[m.Name] = t
	}
	return tensors, metadata, nil
}

func parseEntry(name string, msg json.RawMessage) (TensorMeta, error) {
	if err := ValidateTensorName(name); err != nil {
		return TensorMeta{}, err
	}

	var h SafeTensorHeader
	if err := json.Unmarshal(msg, &h); err != nil {
		return TensorMeta{}, fmt.Errorf("%w: tensor %s: %w", ErrCorrupt, name, err)
	}
	if h.DType != dtypeF64 {
		return TensorMeta{}, fmt.Errorf("tensor %s: %w: %s", name, ErrUnsupportedDType, h.DType)
	}

	shape := make([]int, len(h.Shape))
	elements := int64(1)
	for i, dim := range h.Shape {
		if dim <= 0 {
			return TensorMeta{}, &ValidationError{Type: "invalid_shape", Tensor: name, Details: fmt.Sprintf("%v", h.Shape)}
		}
		if dim > math.MaxInt64/f64Size/elements {
			return TensorMeta{}, &ValidationError{Type: "too_large", Tensor: name, Details: fmt.Sprintf("shape %v overflows", h.Shape)}
		}
		shape[i] = int(dim)
		elements *= dim
	}

	meta := TensorMeta{
		Name:   name,
		Shape:  shape,
		Offset: h.DataOffsets[0],
		Size:   h.DataOffsets[1] - h.DataOffsets[0],
	}
	if meta.Size != elements*f64Size {
		return TensorMeta{}, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("shape %v needs %d bytes, offsets span %d", h.Shape, elements*f64Size, meta.Size),
		}
	}
	return meta, nil
}
