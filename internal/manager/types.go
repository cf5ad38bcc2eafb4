package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"modelbridge/internal/engine"
	"modelbridge/pkg/types"
)

// entry is one live module. The engine model is owned exclusively by the entry.
type entry struct {
	handle   types.Handle
	path     string
	model    engine.Model
	loadedAt time.Time

	forwards atomic.Uint64
	inflight atomic.Int64
	// pins counts forwards that still use model; Destroy waits on it.
	pins sync.WaitGroup
}

func (e *entry) status() types.ModuleStatus {
	return types.ModuleStatus{
		Handle:   e.handle,
		Path:     e.path,
		LoadedAt: e.loadedAt.Unix(),
		Forwards: e.forwards.Load(),
		Inflight: e.inflight.Load(),
	}
}
