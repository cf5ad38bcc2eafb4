package engine

import (
	"context"
	"fmt"
	"os"
	"slices"

	"modelbridge/pkg/types"
)

type echoEngine struct{}

type echoModel struct{ path string }

// NewEcho returns an engine whose models return copies of their inputs. Load
// still requires the model file to exist.
func NewEcho() Engine { return echoEngine{} }

func (echoEngine) Name() string { return "echo" }

func (echoEngine) Load(ctx context.Context, path string) (Model, error) {
	ok, err := modelExists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return &echoModel{path: path}, nil
}

func (echoEngine) Run(ctx context.Context, m Model, inputs []types.Tensor) ([]types.Tensor, error) {
	if _, ok := m.(*echoModel); !ok {
		return nil, fmt.Errorf("echo: unexpected model type %T", m)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Tensor, len(inputs))
	for i, in := range inputs {
		out[i] = types.Tensor{
			Name:         in.Name,
			DType:        in.DType,
			Shape:        slices.Clone(in.Shape),
			MemoryFormat: in.MemoryFormat,
			Data:         cloneData(in.Data),
		}
	}
	return out, nil
}

func (echoEngine) Release(Model) error { return nil }

func (echoEngine) Check() types.SanityReport {
	return types.SanityReport{Engine: "echo", Available: true}
}

func cloneData(data any) any {
	switch v := data.(type) {
	case []uint8:
		return slices.Clone(v)
	case []int8:
		return slices.Clone(v)
	case []int32:
		return slices.Clone(v)
	case []float32:
		return slices.Clone(v)
	case []int64:
		return slices.Clone(v)
	case []float64:
		return slices.Clone(v)
	}
	return data
}
