package manager

import (
	"context"
	"time"

	"modelbridge/pkg/types"
)

// Forward runs the module behind h on inputs and returns the engine outputs in
// the order the engine produced them. The registry lock is released before the
// engine runs, so forwards on different modules proceed in parallel.
func (m *Manager) Forward(ctx context.Context, h types.Handle, inputs []types.Tensor) ([]types.Tensor, error) {
	if len(inputs) == 0 {
		opsTotal.WithLabelValues("forward", "invalid").Inc()
		return nil, invalidInputsError{err: errEmptyInputs}
	}
	e := m.pin(h)
	if e == nil {
		opsTotal.WithLabelValues("forward", "unknown_handle").Inc()
		return nil, unknownHandleError{handle: h}
	}
	defer m.unpin(e)

	if e.model == nil {
		opsTotal.WithLabelValues("forward", "error").Inc()
		return nil, forwardError{handle: h, err: errNilModule}
	}
	start := time.Now()
	out, err := m.engine.Run(ctx, e.model, inputs)
	forwardDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		opsTotal.WithLabelValues("forward", "error").Inc()
		m.log.Debug().Err(err).Int64("handle", int64(h)).Msg("forward failed")
		return nil, forwardError{handle: h, err: err}
	}
	if out == nil {
		opsTotal.WithLabelValues("forward", "error").Inc()
		return nil, forwardError{handle: h, err: errNilOutputs}
	}
	e.forwards.Add(1)
	opsTotal.WithLabelValues("forward", "ok").Inc()
	return out, nil
}

// pin looks up h and marks its entry in use. The returned entry stays valid
// until unpin even if Destroy removes it from the map meanwhile.
func (m *Manager) pin(h types.Handle) *entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e := m.entries[h]
	if e == nil {
		return nil
	}
	e.pins.Add(1)
	e.inflight.Add(1)
	return e
}

func (m *Manager) unpin(e *entry) {
	e.inflight.Add(-1)
	e.pins.Done()
}
