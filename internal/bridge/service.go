package bridge

import (
	"github.com/rs/zerolog"

	"modelbridge/internal/catalog"
	"modelbridge/pkg/types"
)

// Registry is the module registry seen by the service. *manager.Manager
// implements it.
type Registry interface {
	Executor
	Modules() []types.ModuleStatus
	Status() types.StatusResponse
	Ready() bool
}

// Service pairs a Dispatcher with the registry's read-only views and the model
// catalog. It is what the HTTP layer serves.
type Service struct {
	*Dispatcher
	reg       Registry
	modelsDir string
}

// NewService returns a Service over reg. modelsDir may be empty, in which case
// the catalog is empty.
func NewService(reg Registry, modelsDir string, logger *zerolog.Logger) *Service {
	return &Service{Dispatcher: New(reg, logger), reg: reg, modelsDir: modelsDir}
}

// ListModels scans the models directory.
func (s *Service) ListModels() ([]types.ModelFile, error) {
	models, err := catalog.LoadDir(s.modelsDir)
	if models == nil && err == nil {
		models = []types.ModelFile{}
	}
	return models, err
}

func (s *Service) Modules() []types.ModuleStatus { return s.reg.Modules() }

func (s *Service) Status() types.StatusResponse { return s.reg.Status() }

func (s *Service) Ready() bool { return s.reg.Ready() }
