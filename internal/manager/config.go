package manager

import (
	"time"

	"github.com/rs/zerolog"

	"modelbridge/internal/engine"
	"modelbridge/pkg/types"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Engine performs the actual model work. Required.
	Engine engine.Engine
	// MaxModels bounds the number of live modules; 0 means unlimited and 1
	// gives single-model semantics.
	MaxModels int
	// Logger receives lifecycle logs. Nil logs nothing.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		entries:   make(map[types.Handle]*entry),
		engine:    cfg.Engine,
		maxModels: cfg.MaxModels,
		log:       zerolog.Nop(),
		publisher: noopPublisher{},
		startTime: time.Now(),
	}
	if m.maxModels < 0 {
		m.maxModels = 0
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	}
	return m
}
