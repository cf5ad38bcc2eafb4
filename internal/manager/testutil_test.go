package manager

import (
	"context"
	"errors"
	"sync"

	"modelbridge/internal/engine"
	"modelbridge/pkg/types"
)

type fakeModel struct{ path string }

// fakeEngine is an in-memory engine used for tests. Run echoes its inputs.
type fakeEngine struct {
	mu         sync.Mutex
	loadErr    error
	runErr     error
	releaseErr error
	nilModel   bool
	nilOutputs bool
	// when set, Run signals started and then blocks until block is closed.
	block   chan struct{}
	started chan struct{}

	loads    int
	runs     int
	released map[*fakeModel]int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{released: make(map[*fakeModel]int)}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Load(ctx context.Context, path string) (engine.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.nilModel {
		return nil, nil
	}
	return &fakeModel{path: path}, nil
}

func (f *fakeEngine) Run(ctx context.Context, m engine.Model, inputs []types.Tensor) ([]types.Tensor, error) {
	fm, ok := m.(*fakeModel)
	if !ok {
		return nil, errors.New("foreign model")
	}
	f.mu.Lock()
	f.runs++
	runErr, nilOut, block, started := f.runErr, f.nilOutputs, f.block, f.started
	if f.released[fm] > 0 {
		f.mu.Unlock()
		return nil, errors.New("run on released model")
	}
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if runErr != nil {
		return nil, runErr
	}
	if nilOut {
		return nil, nil
	}
	return append([]types.Tensor(nil), inputs...), nil
}

func (f *fakeEngine) Release(m engine.Model) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released[m.(*fakeModel)]++
	return f.releaseErr
}

func (f *fakeEngine) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

// releases returns the total number of Release calls and the highest count
// seen for a single model.
func (f *fakeEngine) releases() (total, maxPerModel int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.released {
		total += n
		if n > maxPerModel {
			maxPerModel = n
		}
	}
	return total, maxPerModel
}

func oneTensor() []types.Tensor {
	return []types.Tensor{{Name: "x", DType: types.DTypeFloat32, Shape: []int64{1, 3}, Data: []float32{1, 2, 3}}}
}
