// Package catalog lists the model files available for loading.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"modelbridge/internal/common/fsutil"
	"modelbridge/pkg/types"
)

// Extensions are the model file suffixes the catalog reports.
var Extensions = []string{".onnx", ".ort", ".ptl", ".pt"}

// LoadDir scans dir (non-recursively) for model files. Path is absolute, so a
// catalog entry can be passed straight to a load call. An empty dir yields no
// models.
func LoadDir(dir string) ([]types.ModelFile, error) {
	if dir == "" {
		return nil, nil
	}
	abs, err := fsutil.AbsPath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.ModelFile
	for _, e := range entries {
		if e.IsDir() || !fsutil.HasExt(e.Name(), Extensions...) {
			continue
		}
		mf := types.ModelFile{Name: e.Name(), Path: filepath.Join(abs, e.Name())}
		if info, err := e.Info(); err == nil {
			mf.SizeBytes = info.Size()
		}
		models = append(models, mf)
	}
	return models, nil
}
