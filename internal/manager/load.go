package manager

import (
	"context"
	"time"

	"modelbridge/pkg/types"
)

// Load asks the engine to load the model at path and registers it under a new
// handle. On failure the registry is left unchanged.
func (m *Manager) Load(ctx context.Context, path string) (types.Handle, error) {
	start := time.Now()
	if err := m.admitLoad(); err != nil {
		return 0, m.loadFailed(path, err, start)
	}
	m.publish(Event{Name: "load_start", Fields: map[string]any{"path": path}})

	model, err := m.engine.Load(ctx, path)
	if err != nil {
		return 0, m.loadFailed(path, err, start)
	}
	if model == nil {
		return 0, m.loadFailed(path, errNilModel, start)
	}

	m.mu.Lock()
	if err := m.admitLoadLocked(); err != nil {
		m.mu.Unlock()
		// Lost a race with Close or another Load; the model never became visible.
		_ = m.engine.Release(model)
		return 0, m.loadFailed(path, err, start)
	}
	m.lastID++
	h := m.lastID
	m.entries[h] = &entry{handle: h, path: path, model: model, loadedAt: time.Now()}
	m.loadsTotal++
	live := len(m.entries)
	m.mu.Unlock()

	liveModules.Set(float64(live))
	opsTotal.WithLabelValues("load", "ok").Inc()
	m.log.Info().Int64("handle", int64(h)).Str("path", path).Dur("dur", time.Since(start)).Msg("module loaded")
	m.publish(Event{Name: "load_done", Handle: h, Fields: map[string]any{"path": path}})
	return h, nil
}

func (m *Manager) admitLoad() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.admitLoadLocked()
}

func (m *Manager) admitLoadLocked() error {
	if m.closed {
		return errClosed
	}
	if m.engine == nil {
		return errNoEngine
	}
	if m.maxModels > 0 && len(m.entries) >= m.maxModels {
		return errModelLimit
	}
	return nil
}

func (m *Manager) loadFailed(path string, err error, start time.Time) error {
	opsTotal.WithLabelValues("load", "error").Inc()
	m.log.Warn().Err(err).Str("path", path).Dur("dur", time.Since(start)).Msg("module load failed")
	m.publish(Event{Name: "load_error", Fields: map[string]any{"path": path, "error": err.Error()}})
	return loadError{path: path, err: err}
}
