package manager

import (
	"modelbridge/internal/engine"
	"modelbridge/pkg/types"
)

// SanityCheck reports whether the configured engine can run in this build.
// It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() types.SanityReport {
	if m.engine == nil {
		return types.SanityReport{Error: "no engine configured"}
	}
	if c, ok := m.engine.(engine.Checker); ok {
		r := c.Check()
		if r.Engine == "" {
			r.Engine = m.engine.Name()
		}
		return r
	}
	return types.SanityReport{Engine: m.engine.Name(), Available: true}
}
