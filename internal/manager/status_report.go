package manager

import (
	"sort"
	"time"

	"modelbridge/pkg/types"
)

// Modules lists live modules ordered by handle.
func (m *Manager) Modules() []types.ModuleStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modulesLocked()
}

func (m *Manager) modulesLocked() []types.ModuleStatus {
	out := make([]types.ModuleStatus, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	m.mu.RLock()
	resp := types.StatusResponse{
		Engine:         m.EngineName(),
		Modules:        m.modulesLocked(),
		MaxModels:      m.maxModels,
		LoadsTotal:     m.loadsTotal,
		DestroysTotal:  m.destroysTotal,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	m.mu.RUnlock()
	resp.Sanity = m.SanityCheck()
	return resp
}
