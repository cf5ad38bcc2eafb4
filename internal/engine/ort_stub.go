//go:build !ort

package engine

// This file provides a no-CGO stub for the onnxruntime engine. It is compiled
// when the 'ort' build tag is NOT set, keeping default builds CGO-free.

import (
	"context"

	"modelbridge/pkg/types"
)

const ortMissing = "onnxruntime support not built (missing 'ort' build tag)"

type ortEngine struct {
	libraryPath string
}

// NewORT returns a stub that refuses to load models in this build.
func NewORT(libraryPath string) Engine {
	return &ortEngine{libraryPath: libraryPath}
}

func (e *ortEngine) Name() string { return "ort" }

func (e *ortEngine) Load(ctx context.Context, path string) (Model, error) {
	return nil, ErrDependencyUnavailable(ortMissing)
}

func (e *ortEngine) Run(ctx context.Context, m Model, inputs []types.Tensor) ([]types.Tensor, error) {
	return nil, ErrDependencyUnavailable(ortMissing)
}

func (e *ortEngine) Release(Model) error { return nil }

func (e *ortEngine) Check() types.SanityReport {
	return types.SanityReport{Engine: "ort", Library: e.libraryPath, Error: ortMissing}
}
