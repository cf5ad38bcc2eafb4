// Package bridge is the host-facing entry point: it turns a method name and a
// loosely typed argument bag into a command, runs it on the module registry and
// encodes the result as a Reply. Transport layers call Dispatch and never see
// Go errors.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"modelbridge/internal/marshal"
	"modelbridge/pkg/types"
)

// Executor runs parsed commands. *manager.Manager implements it.
type Executor interface {
	Execute(ctx context.Context, cmd marshal.Command) (any, error)
	Close() error
}

// Dispatcher routes bridge calls to an Executor.
type Dispatcher struct {
	exec Executor
	log  zerolog.Logger
}

// New returns a Dispatcher over exec. A nil logger logs nothing.
func New(exec Executor, logger *zerolog.Logger) *Dispatcher {
	d := &Dispatcher{exec: exec, log: zerolog.Nop()}
	if logger != nil {
		d.log = logger.With().Str("component", "bridge").Logger()
	}
	return d
}

// Dispatch handles one call. Unknown methods yield a not-implemented reply;
// every failure becomes an error reply with its kind.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, args map[string]any) types.Reply {
	start := time.Now()
	cmd, err := marshal.Parse(method, args)
	if marshal.IsNotImplemented(err) {
		d.log.Debug().Str("method", method).Msg("method not implemented")
		return marshal.EncodeNotImplemented(method)
	}
	if err != nil {
		return d.fail(method, err, start)
	}
	v, err := d.exec.Execute(ctx, cmd)
	if err != nil {
		return d.fail(method, err, start)
	}
	ev := d.log.Debug().Str("method", method).Dur("dur", time.Since(start))
	if h, ok := v.(types.Handle); ok {
		ev = ev.Int64("handle", int64(h))
	}
	ev.Msg("call ok")
	return marshal.EncodeSuccess(encodeValue(cmd, v))
}

// Detach tears down every live module. It is called when the host unregisters
// the bridge.
func (d *Dispatcher) Detach() error {
	err := d.exec.Close()
	if err != nil {
		d.log.Warn().Err(err).Msg("detach")
	}
	return err
}

func (d *Dispatcher) fail(method string, err error, start time.Time) types.Reply {
	kind := KindOf(method, err)
	d.log.Info().Str("method", method).Str("kind", string(kind)).Err(err).Dur("dur", time.Since(start)).Msg("call failed")
	return marshal.EncodeError(kind, err.Error())
}

// KindOf classifies err. Errors exposing Kind keep it; anything else is charged
// to the engine step of the method.
func KindOf(method string, err error) types.ErrorKind {
	var k interface{ Kind() types.ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	if method == marshal.MethodLoad {
		return types.KindLoadError
	}
	return types.KindForwardError
}

func encodeValue(cmd marshal.Command, v any) any {
	switch x := v.(type) {
	case types.Handle:
		return int64(x)
	case []types.Tensor:
		if fc, ok := cmd.(marshal.ForwardCommand); ok && fc.OutputFormat == marshal.OutputTyped {
			return marshal.EncodeTypedValue(x)
		}
		return marshal.EncodeTensors(x)
	}
	return v
}
