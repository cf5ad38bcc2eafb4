// Package engine defines the inference engine capability consumed by the
// manager and provides the built-in implementations:
//
//   - onnx: pure Go ONNX execution (gonnx on gorgonia tensors).
//   - ort:  onnxruntime through cgo. Enabled with `-tags=ort`; a stub that
//     reports the dependency as unavailable is compiled otherwise.
//   - echo: returns its inputs; used for smoke tests of the transport.
//
// Engines load whole model files, run them on ordered tensor lists and release
// them. They know nothing about handles; identity lives in the manager.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"modelbridge/pkg/types"
)

// Model is an engine-owned loaded model. Only the engine that produced it may
// inspect it.
type Model any

// Engine is the native inference capability.
type Engine interface {
	// Name identifies the engine in logs and status output.
	Name() string
	// Load reads and prepares the model stored at path.
	Load(ctx context.Context, path string) (Model, error)
	// Run executes the model. Outputs are returned in the model's output order.
	Run(ctx context.Context, m Model, inputs []types.Tensor) ([]types.Tensor, error)
	// Release frees the resources of a model. It is called at most once per model.
	Release(m Model) error
}

// Checker is implemented by engines that can report whether their runtime
// dependencies are present.
type Checker interface {
	Check() types.SanityReport
}

// dependencyUnavailableError signals a runtime that is not part of this build or
// whose shared library cannot be found.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependency-unavailable error.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}

// Options configures engine construction.
type Options struct {
	// ORTLibraryPath points to libonnxruntime for the ort engine.
	ORTLibraryPath string
}

// New returns the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "onnx":
		return NewONNX(), nil
	case "ort":
		return NewORT(opts.ORTLibraryPath), nil
	case "echo":
		return NewEcho(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want onnx, ort or echo)", name)
	}
}
