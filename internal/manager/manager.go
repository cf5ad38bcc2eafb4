package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelbridge/internal/engine"
	"modelbridge/internal/marshal"
	"modelbridge/pkg/types"
)

// Manager is the module registry: it maps handles to loaded engine models and
// executes commands against them.
type Manager struct {
	mu        sync.RWMutex
	entries   map[types.Handle]*entry
	lastID    types.Handle
	closed    bool
	maxModels int

	loadsTotal    uint64
	destroysTotal uint64

	engine    engine.Engine
	log       zerolog.Logger
	publisher EventPublisher
	startTime time.Time
}

// New returns a Manager that runs models on eng without a module limit.
func New(eng engine.Engine) *Manager {
	return NewWithConfig(ManagerConfig{Engine: eng})
}

// SetEventPublisher installs a publisher; nil restores the no-op default.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

// Execute runs a parsed command. Load returns the new handle, Forward the
// output tensors and Destroy nil.
func (m *Manager) Execute(ctx context.Context, cmd marshal.Command) (any, error) {
	switch c := cmd.(type) {
	case marshal.LoadCommand:
		return m.Load(ctx, c.FilePath)
	case marshal.ForwardCommand:
		return m.Forward(ctx, c.Handle, c.Inputs)
	case marshal.DestroyCommand:
		return nil, m.Destroy(ctx, c.Handle)
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

// Handles returns the live handles in ascending order.
func (m *Manager) Handles() []types.Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Handle, 0, len(m.entries))
	for h := range m.entries {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ready reports whether the manager accepts new loads.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed && m.engine != nil
}

// EngineName returns the configured engine's name.
func (m *Manager) EngineName() string {
	if m.engine == nil {
		return ""
	}
	return m.engine.Name()
}

// Close destroys every live module and refuses further loads. Release errors
// are joined and returned; the registry is empty either way.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	live := make([]*entry, 0, len(m.entries))
	for h, e := range m.entries {
		live = append(live, e)
		delete(m.entries, h)
	}
	m.destroysTotal += uint64(len(live))
	m.mu.Unlock()

	liveModules.Set(0)
	var errs error
	for _, e := range live {
		errs = errors.Join(errs, m.release(e))
	}
	if len(live) > 0 {
		m.log.Info().Int("modules", len(live)).Msg("registry torn down")
	}
	return errs
}
