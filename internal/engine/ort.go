//go:build ort

package engine

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"modelbridge/internal/common/fsutil"
	"modelbridge/pkg/types"
)

type ortEngine struct {
	libraryPath string
	once        sync.Once
	initErr     error
}

type ortModel struct {
	session     *ort.DynamicAdvancedSession
	inputNames  []string
	outputNames []string
}

// NewORT returns an onnxruntime-backed engine. The shared library is loaded
// lazily on the first Load.
func NewORT(libraryPath string) Engine {
	return &ortEngine{libraryPath: libraryPath}
}

func (e *ortEngine) Name() string { return "ort" }

func (e *ortEngine) init() error {
	e.once.Do(func() {
		if e.libraryPath != "" {
			ort.SetSharedLibraryPath(e.libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			e.initErr = ErrDependencyUnavailable("onnxruntime init: " + err.Error())
		}
	})
	return e.initErr
}

func (e *ortEngine) Load(ctx context.Context, path string) (Model, error) {
	if err := e.init(); err != nil {
		return nil, err
	}
	b, err := readModel(ctx, path)
	if err != nil {
		return nil, err
	}
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(b)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	m := &ortModel{}
	for _, in := range inputs {
		m.inputNames = append(m.inputNames, in.Name)
	}
	for _, out := range outputs {
		m.outputNames = append(m.outputNames, out.Name)
	}
	m.session, err = ort.NewDynamicAdvancedSessionWithONNXData(b, m.inputNames, m.outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", path, err)
	}
	return m, nil
}

func (e *ortEngine) Run(ctx context.Context, m Model, inputs []types.Tensor) ([]types.Tensor, error) {
	om, ok := m.(*ortModel)
	if !ok || om.session == nil {
		return nil, fmt.Errorf("ort: unexpected model %T", m)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) > len(om.inputNames) {
		return nil, fmt.Errorf("model takes %d inputs, got %d", len(om.inputNames), len(inputs))
	}
	ordered := make([]ort.Value, len(om.inputNames))
	defer destroyValues(ordered)
	for i, in := range inputs {
		idx := i
		if in.Name != "" {
			idx = indexOf(om.inputNames, in.Name)
			if idx < 0 {
				return nil, fmt.Errorf("model has no input %q", in.Name)
			}
		}
		if ordered[idx] != nil {
			return nil, fmt.Errorf("input %q bound twice", om.inputNames[idx])
		}
		v, err := toORT(in)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", om.inputNames[idx], err)
		}
		ordered[idx] = v
	}
	for i, v := range ordered {
		if v == nil {
			return nil, fmt.Errorf("missing input %q", om.inputNames[i])
		}
	}
	outputs := make([]ort.Value, len(om.outputNames))
	defer destroyValues(outputs)
	if err := om.session.Run(ordered, outputs); err != nil {
		return nil, err
	}
	res := make([]types.Tensor, len(outputs))
	for i, v := range outputs {
		t, err := fromORT(om.outputNames[i], v)
		if err != nil {
			return nil, err
		}
		res[i] = t
	}
	return res, nil
}

func (e *ortEngine) Release(m Model) error {
	om, ok := m.(*ortModel)
	if !ok || om.session == nil {
		return nil
	}
	err := om.session.Destroy()
	om.session = nil
	return err
}

func (e *ortEngine) Check() types.SanityReport {
	r := types.SanityReport{Engine: "ort", Library: e.libraryPath}
	if e.libraryPath != "" && !fsutil.PathExists(e.libraryPath) {
		r.Error = "onnxruntime library not found"
		return r
	}
	r.Available = true
	return r
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func destroyValues(vs []ort.Value) {
	for _, v := range vs {
		if v != nil {
			_ = v.Destroy()
		}
	}
}

func toORT(in types.Tensor) (ort.Value, error) {
	if in.MemoryFormat != "" && in.MemoryFormat != types.MemoryFormatContiguous {
		return nil, fmt.Errorf("memory format %s not supported", in.MemoryFormat)
	}
	shape := ort.NewShape(in.Shape...)
	switch v := in.Data.(type) {
	case []uint8:
		return ort.NewTensor(shape, cloneData(v).([]uint8))
	case []int8:
		return ort.NewTensor(shape, cloneData(v).([]int8))
	case []int32:
		return ort.NewTensor(shape, cloneData(v).([]int32))
	case []float32:
		return ort.NewTensor(shape, cloneData(v).([]float32))
	case []int64:
		return ort.NewTensor(shape, cloneData(v).([]int64))
	case []float64:
		return ort.NewTensor(shape, cloneData(v).([]float64))
	}
	return nil, fmt.Errorf("unsupported data type %T", in.Data)
}

func fromORT(name string, v ort.Value) (types.Tensor, error) {
	out := types.Tensor{Name: name, Shape: append([]int64(nil), v.GetShape()...)}
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		out.DType, out.Data = types.DTypeFloat32, append([]float32(nil), t.GetData()...)
	case *ort.Tensor[float64]:
		out.DType, out.Data = types.DTypeFloat64, append([]float64(nil), t.GetData()...)
	case *ort.Tensor[int64]:
		out.DType, out.Data = types.DTypeInt64, append([]int64(nil), t.GetData()...)
	case *ort.Tensor[int32]:
		out.DType, out.Data = types.DTypeInt32, append([]int32(nil), t.GetData()...)
	case *ort.Tensor[int8]:
		out.DType, out.Data = types.DTypeInt8, append([]int8(nil), t.GetData()...)
	case *ort.Tensor[uint8]:
		out.DType, out.Data = types.DTypeUint8, append([]uint8(nil), t.GetData()...)
	default:
		return types.Tensor{}, fmt.Errorf("output %q: unsupported value %T", name, v)
	}
	return out, nil
}
