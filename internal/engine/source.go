package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/viant/afs"

	"modelbridge/internal/common/fsutil"
)

var fileSystem = afs.New()

// resolvePath expands a leading '~' for local paths; URLs pass through.
func resolvePath(path string) (string, error) {
	if fsutil.IsURL(path) {
		return path, nil
	}
	return fsutil.ExpandHome(path)
}

// readModel returns the bytes stored at path, which may be a local file or any
// URL afs understands (file://, mem://, ...).
func readModel(ctx context.Context, path string) ([]byte, error) {
	p, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	rc, err := fileSystem.OpenURL(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// modelExists reports whether a model file is present at path.
func modelExists(ctx context.Context, path string) (bool, error) {
	p, err := resolvePath(path)
	if err != nil {
		return false, err
	}
	return fileSystem.Exists(ctx, p)
}
