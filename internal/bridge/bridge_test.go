package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbridge/internal/engine"
	"modelbridge/internal/manager"
	"modelbridge/internal/marshal"
	"modelbridge/pkg/types"
)

func newEchoDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "model.pt")
	require.NoError(t, os.WriteFile(p, []byte("weights"), 0o644))
	return New(manager.New(engine.NewEcho()), nil), p
}

func requireKind(t *testing.T, r types.Reply, kind types.ErrorKind) {
	t.Helper()
	require.Equal(t, types.ReplyFailed, r.Status, "reply: %+v", r)
	require.NotNil(t, r.Error)
	assert.Equal(t, kind, r.Error.Kind, "message: %s", r.Error.Message)
}

func TestDispatch_LoadForwardDestroyForward(t *testing.T) {
	d, path := newEchoDispatcher(t)
	ctx := context.Background()

	r := d.Dispatch(ctx, "load", map[string]any{"filePath": path})
	require.Equal(t, types.ReplyOK, r.Status, "load: %+v", r.Error)
	h, ok := r.Value.(int64)
	require.True(t, ok, "handle type %T", r.Value)

	inputs := []any{
		map[string]any{"name": "a", "dtype": "float32", "shape": []any{2}, "data": []any{0.5, 1.5}},
		map[string]any{"name": "b", "dtype": "int64", "data": []any{7}},
	}
	r = d.Dispatch(ctx, "forward", map[string]any{"handle": h, "inputs": inputs})
	require.Equal(t, types.ReplyOK, r.Status, "forward: %+v", r.Error)
	out, ok := r.Value.([]map[string]any)
	require.True(t, ok, "forward value type %T", r.Value)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0]["name"])
	assert.Equal(t, []float32{0.5, 1.5}, out[0]["data"])
	assert.Equal(t, "b", out[1]["name"])
	assert.Equal(t, []int64{7}, out[1]["data"])

	// repeatable
	again := d.Dispatch(ctx, "forward", map[string]any{"handle": h, "inputs": inputs})
	assert.Equal(t, r, again)

	r = d.Dispatch(ctx, "destroy", map[string]any{"handle": h})
	assert.Equal(t, types.ReplyOK, r.Status)
	assert.Nil(t, r.Value)

	r = d.Dispatch(ctx, "forward", map[string]any{"handle": h, "inputs": inputs})
	requireKind(t, r, types.KindUnknownHandle)
}

func TestDispatch_ErrorKinds(t *testing.T) {
	d, path := newEchoDispatcher(t)
	ctx := context.Background()

	requireKind(t, d.Dispatch(ctx, "load", map[string]any{}), types.KindMissingField)
	requireKind(t, d.Dispatch(ctx, "load", map[string]any{"filePath": filepath.Join(filepath.Dir(path), "nope.pt")}), types.KindLoadError)
	requireKind(t, d.Dispatch(ctx, "forward", map[string]any{"inputs": []any{}}), types.KindMissingField)
	requireKind(t, d.Dispatch(ctx, "forward", map[string]any{"handle": 1, "inputs": []any{}}), types.KindInvalidShape)
	requireKind(t, d.Dispatch(ctx, "forward", map[string]any{"handle": 99, "inputs": []any{map[string]any{"data": []any{1}}}}), types.KindUnknownHandle)
	requireKind(t, d.Dispatch(ctx, "destroy", nil), types.KindMissingField)
}

func TestDispatch_DestroyUnknownIsOK(t *testing.T) {
	d, _ := newEchoDispatcher(t)
	r := d.Dispatch(context.Background(), "destroy", map[string]any{"handle": 12345})
	assert.Equal(t, types.ReplyOK, r.Status)
}

func TestDispatch_UnknownMethod(t *testing.T) {
	d, _ := newEchoDispatcher(t)
	r := d.Dispatch(context.Background(), "reset", map[string]any{"handle": 1})
	assert.Equal(t, types.ReplyNotImplemented, r.Status)
	assert.Equal(t, "reset", r.Method)
	assert.Nil(t, r.Value)
	assert.Nil(t, r.Error)
}

func TestDetach_ReleasesModules(t *testing.T) {
	d, path := newEchoDispatcher(t)
	ctx := context.Background()
	r := d.Dispatch(ctx, "load", map[string]any{"filePath": path})
	require.Equal(t, types.ReplyOK, r.Status)

	require.NoError(t, d.Detach())
	r = d.Dispatch(ctx, "forward", map[string]any{"handle": r.Value, "inputs": []any{map[string]any{"data": []any{1}}}})
	requireKind(t, r, types.KindUnknownHandle)
	requireKind(t, d.Dispatch(ctx, "load", map[string]any{"filePath": path}), types.KindLoadError)
}

type plainErrExecutor struct{}

func (plainErrExecutor) Execute(context.Context, marshal.Command) (any, error) {
	return nil, errors.New("boom")
}

func (plainErrExecutor) Close() error { return nil }

func TestKindOf_FallsBackByMethod(t *testing.T) {
	d := New(plainErrExecutor{}, nil)
	ctx := context.Background()
	requireKind(t, d.Dispatch(ctx, "load", map[string]any{"filePath": "x"}), types.KindLoadError)
	requireKind(t, d.Dispatch(ctx, "forward", map[string]any{"handle": 1, "inputs": []any{map[string]any{"data": []any{1}}}}), types.KindForwardError)
}

func TestDispatch_ForwardTypedOutput(t *testing.T) {
	d, path := newEchoDispatcher(t)
	ctx := context.Background()
	r := d.Dispatch(ctx, "load", map[string]any{"filePath": path})
	require.Equal(t, types.ReplyOK, r.Status)
	h := r.Value.(int64)

	r = d.Dispatch(ctx, "forward", map[string]any{
		"moduleId":     h,
		"outputFormat": "typed",
		"inputs":       []any{map[string]any{"typeCode": 4, "data": 5}},
	})
	require.Equal(t, types.ReplyOK, r.Status, "forward: %+v", r.Error)
	v, ok := r.Value.(map[string]any)
	require.True(t, ok, "value type %T", r.Value)
	assert.Equal(t, 2, v["typeCode"])
	inner := v["data"].(map[string]any)
	assert.Equal(t, 5, inner["dtype"])
	assert.Equal(t, []int64{}, inner["shape"])
	assert.Equal(t, []int64{5}, inner["data"])

	r = d.Dispatch(ctx, "forward", map[string]any{
		"handle":       h,
		"outputFormat": "typed",
		"inputs":       []any{map[string]any{"data": []any{1}}, map[string]any{"data": []any{2}}},
	})
	require.Equal(t, types.ReplyOK, r.Status)
	v = r.Value.(map[string]any)
	assert.Equal(t, 7, v["typeCode"])
	assert.Len(t, v["data"], 2)
}
