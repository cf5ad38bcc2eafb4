package manager

import (
	"context"

	"modelbridge/pkg/types"
)

// Destroy removes the module behind h and releases its engine model once all
// running forwards on it have returned. Unknown handles are a no-op; Destroy
// always returns nil.
func (m *Manager) Destroy(ctx context.Context, h types.Handle) error {
	m.mu.Lock()
	e := m.entries[h]
	delete(m.entries, h)
	if e != nil {
		m.destroysTotal++
	}
	live := len(m.entries)
	m.mu.Unlock()

	if e == nil {
		opsTotal.WithLabelValues("destroy", "noop").Inc()
		m.log.Debug().Int64("handle", int64(h)).Msg("destroy of unknown handle")
		return nil
	}
	liveModules.Set(float64(live))
	opsTotal.WithLabelValues("destroy", "ok").Inc()
	_ = m.release(e)
	return nil
}

// release waits for pinned forwards and frees the engine model. The entry must
// already be unreachable from the map.
func (m *Manager) release(e *entry) error {
	m.publish(Event{Name: "destroy_start", Handle: e.handle})
	e.pins.Wait()
	var err error
	if e.model != nil {
		err = m.engine.Release(e.model)
		e.model = nil
	}
	if err != nil {
		m.log.Warn().Err(err).Int64("handle", int64(e.handle)).Msg("engine release failed")
	} else {
		m.log.Info().Int64("handle", int64(e.handle)).Msg("module destroyed")
	}
	m.publish(Event{Name: "destroy_done", Handle: e.handle})
	return err
}
