package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"modelbridge/pkg/types"
)

type onnxEngine struct{}

type onnxModel struct {
	path  string
	model *gonnx.Model
}

// NewONNX returns the pure Go ONNX engine.
func NewONNX() Engine { return onnxEngine{} }

func (onnxEngine) Name() string { return "onnx" }

func (onnxEngine) Load(ctx context.Context, path string) (Model, error) {
	b, err := readModel(ctx, path)
	if err != nil {
		return nil, err
	}
	m, err := gonnx.NewModelFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parse onnx model %s: %w", path, err)
	}
	return &onnxModel{path: path, model: m}, nil
}

func (onnxEngine) Run(ctx context.Context, m Model, inputs []types.Tensor) (out []types.Tensor, err error) {
	om, ok := m.(*onnxModel)
	if !ok || om.model == nil {
		return nil, fmt.Errorf("onnx: unexpected model %T", m)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("onnx: run panicked: %v", r)
		}
	}()
	feeds, err := bindInputs(feedNames(om.model.InputNames(), om.model.ParamNames()), inputs)
	if err != nil {
		return nil, err
	}
	results, err := om.model.Run(feeds)
	if err != nil {
		return nil, err
	}
	if results == nil {
		return nil, nil
	}
	names := om.model.OutputNames()
	out = make([]types.Tensor, 0, len(names))
	for _, name := range names {
		t, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("onnx: output %q missing from results", name)
		}
		conv, err := fromGorgonia(name, t)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

func (onnxEngine) Release(m Model) error {
	if om, ok := m.(*onnxModel); ok {
		om.model = nil
	}
	return nil
}

func (onnxEngine) Check() types.SanityReport {
	return types.SanityReport{Engine: "onnx", Available: true}
}

// feedNames returns the graph inputs a caller has to feed. Older models list
// their initializers as graph inputs too; those are dropped.
func feedNames(inputs, params []string) []string {
	if len(params) == 0 {
		return inputs
	}
	skip := make(map[string]struct{}, len(params))
	for _, p := range params {
		skip[p] = struct{}{}
	}
	out := make([]string, 0, len(inputs))
	for _, name := range inputs {
		if _, ok := skip[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// bindInputs maps the ordered inputs onto the model's feed names. Named
// inputs bind by name; unnamed inputs take the name at their position.
func bindInputs(names []string, inputs []types.Tensor) (map[string]tensor.Tensor, error) {
	if len(inputs) > len(names) {
		return nil, fmt.Errorf("model takes %d inputs, got %d", len(names), len(inputs))
	}
	feeds := make(map[string]tensor.Tensor, len(inputs))
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = names[i]
		} else if !slices.Contains(names, name) {
			return nil, fmt.Errorf("model has no input %q", name)
		}
		if _, dup := feeds[name]; dup {
			return nil, fmt.Errorf("input %q bound twice", name)
		}
		t, err := toGorgonia(in)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		feeds[name] = t
	}
	return feeds, nil
}

func toGorgonia(in types.Tensor) (tensor.Tensor, error) {
	if in.MemoryFormat != "" && in.MemoryFormat != types.MemoryFormatContiguous {
		return nil, fmt.Errorf("memory format %s not supported", in.MemoryFormat)
	}
	if in.Len() < 0 {
		return nil, fmt.Errorf("unsupported data type %T", in.Data)
	}
	if len(in.Shape) == 0 {
		return scalarTensor(in.Data)
	}
	dims := make([]int, len(in.Shape))
	for i, d := range in.Shape {
		dims[i] = int(d)
	}
	return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(cloneData(in.Data))), nil
}

func scalarTensor(data any) (tensor.Tensor, error) {
	switch v := data.(type) {
	case []uint8:
		return tensor.New(tensor.FromScalar(v[0])), nil
	case []int8:
		return tensor.New(tensor.FromScalar(v[0])), nil
	case []int32:
		return tensor.New(tensor.FromScalar(v[0])), nil
	case []float32:
		return tensor.New(tensor.FromScalar(v[0])), nil
	case []int64:
		return tensor.New(tensor.FromScalar(v[0])), nil
	case []float64:
		return tensor.New(tensor.FromScalar(v[0])), nil
	}
	return nil, fmt.Errorf("unsupported data type %T", data)
}

func fromGorgonia(name string, t tensor.Tensor) (types.Tensor, error) {
	shape := t.Shape()
	out := types.Tensor{Name: name, Shape: make([]int64, len(shape))}
	for i, d := range shape {
		out.Shape[i] = int64(d)
	}
	switch v := t.Data().(type) {
	case []float32:
		out.DType, out.Data = types.DTypeFloat32, append([]float32(nil), v...)
	case float32:
		out.DType, out.Data = types.DTypeFloat32, []float32{v}
	case []float64:
		out.DType, out.Data = types.DTypeFloat64, append([]float64(nil), v...)
	case float64:
		out.DType, out.Data = types.DTypeFloat64, []float64{v}
	case []int64:
		out.DType, out.Data = types.DTypeInt64, append([]int64(nil), v...)
	case int64:
		out.DType, out.Data = types.DTypeInt64, []int64{v}
	case []int32:
		out.DType, out.Data = types.DTypeInt32, append([]int32(nil), v...)
	case int32:
		out.DType, out.Data = types.DTypeInt32, []int32{v}
	case []int8:
		out.DType, out.Data = types.DTypeInt8, append([]int8(nil), v...)
	case int8:
		out.DType, out.Data = types.DTypeInt8, []int8{v}
	case []uint8:
		out.DType, out.Data = types.DTypeUint8, append([]uint8(nil), v...)
	case uint8:
		out.DType, out.Data = types.DTypeUint8, []uint8{v}
	case []int:
		ints := make([]int64, len(v))
		for i, n := range v {
			ints[i] = int64(n)
		}
		out.DType, out.Data = types.DTypeInt64, ints
	default:
		return types.Tensor{}, fmt.Errorf("output %q: unsupported element type %s", name, t.Dtype())
	}
	if n, ok := out.NumElements(); !ok || n != int64(out.Len()) {
		return types.Tensor{}, fmt.Errorf("output %q: shape %v does not match %d elements", name, out.Shape, out.Len())
	}
	return out, nil
}
