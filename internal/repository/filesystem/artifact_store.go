package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fairFin/business/artifact"
)

// ArtifactStore keeps artifacts under <root>/<version>/<name>, or directly
// under root when version is empty.
type ArtifactStore struct {
	root string
}

var _ artifact.Store = (*ArtifactStore)(nil)

func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root}
}

func (s *ArtifactStore) Get(ctx context.Context, version, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	path, err := s.path(version, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", artifact.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Put writes through a temp file and rename so readers never see a partial
// artifact.
func (s *ArtifactStore) Put(ctx context.Context, version, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	path, err := s.path(version, name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}

func (s *ArtifactStore) path(version, name string) (string, error) {
	for _, part := range []string{version, name} {
		if strings.ContainsAny(part, `/\`) || part == ".." {
			return "", fmt.Errorf("invalid artifact path segment %q", part)
		}
	}
	if name == "" {
		return "", errors.New("artifact name is required")
	}
	return filepath.Join(s.root, version, name), nil
}
