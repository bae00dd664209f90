package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const artifactPrefix = "hostelsync-artifact-"

// ArtifactStore hands out transient files for import and export. Callers release each
// artifact when their request finishes; Sweep removes whatever a crash left behind.
type ArtifactStore struct {
	dir string
	now func() time.Time
}

// Artifact is a single transient file.
type Artifact struct {
	Path string
}

// NewArtifactStore prepares dir for artifacts.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory artifacts live in.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// Reserve returns a fresh, not yet created path with the given extension.
func (s *ArtifactStore) Reserve(ext string) *Artifact {
	ext = strings.TrimPrefix(ext, ".")
	name := artifactPrefix + uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return &Artifact{Path: filepath.Join(s.dir, name)}
}

// Release removes the artifact file. Missing files are not an error.
func (s *ArtifactStore) Release(a *Artifact) error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sweep deletes artifacts older than ttl and returns how many were removed.
func (s *ArtifactStore) Sweep(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), artifactPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
