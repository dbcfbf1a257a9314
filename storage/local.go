package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Local stores blobs on the filesystem under Dir and serves them from
// PublicPath. It is the development-time fallback when no object-store
// credentials are configured.
type Local struct {
	Dir        string
	PublicPath string
}

func NewLocal(dir, publicPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	return &Local{Dir: dir, PublicPath: publicPath}, nil
}

func (l *Local) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	// name is always a freshly minted identifier, never the client's
	// filename, so it is safe to join directly.
	if err := os.WriteFile(filepath.Join(l.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path.Join(l.PublicPath, name), nil
}
