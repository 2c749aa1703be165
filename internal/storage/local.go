package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores blobs as files under the configured upload directory.
// Meant for development deployments without a SeaweedFS cluster or an
// object store; locators record the path relative to the directory.
type Local struct {
	dir string
}

// NewLocal ensures the directory exists and is writable. The write probe
// catches read-only mounts before the first upload does.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, NewError(ErrKindConfiguration, "local.init", fmt.Errorf("upload directory not configured"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewError(ErrKindConfiguration, "local.init", err)
	}

	probe := filepath.Join(dir, ".probe-"+uuid.New().String())
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return nil, NewError(ErrKindConfiguration, "local.init", fmt.Errorf("upload directory not writable: %w", err))
	}
	_ = os.Remove(probe)

	return &Local{dir: dir}, nil
}

func (l *Local) Kind() Kind { return KindLocal }

// Put writes to a temp file first and renames into place, so a crashed
// write never leaves a partial blob at a resolvable path.
func (l *Local) Put(_ context.Context, data []byte, _ string, suggestedName string) (Locator, error) {
	ext := strings.ToLower(filepath.Ext(suggestedName))
	name := uuid.New().String() + ext
	dest := filepath.Join(l.dir, name)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return Locator{}, WriteError("local.put", err, nil)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Locator{}, WriteError("local.put", err, nil)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Locator{}, WriteError("local.put", err, nil)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return Locator{}, WriteError("local.put", err, nil)
	}

	return Locator{Kind: KindLocal, Path: name}, nil
}

func (l *Local) Get(_ context.Context, loc Locator) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, filepath.Clean(loc.Path)))
	if os.IsNotExist(err) {
		return nil, NewError(ErrKindNotFound, "local.get", fmt.Errorf("file %s not found", loc.Path))
	}
	if err != nil {
		return nil, NewError(ErrKindRead, "local.get", err)
	}
	return data, nil
}

func (l *Local) Delete(_ context.Context, loc Locator) error {
	err := os.Remove(filepath.Join(l.dir, filepath.Clean(loc.Path)))
	if err != nil && !os.IsNotExist(err) {
		return NewError(ErrKindWrite, "local.delete", err)
	}
	return nil
}
