//go:build !ort

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestORTStub_ReportsDependencyUnavailable(t *testing.T) {
	e := NewORT("/opt/onnxruntime/lib/libonnxruntime.so")
	_, err := e.Load(context.Background(), "model.onnx")
	assert.True(t, IsDependencyUnavailable(err), "got %v", err)

	r := e.(Checker).Check()
	assert.False(t, r.Available)
	assert.NotEmpty(t, r.Error)
}
