package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Filesystem serves snapshots from a local directory. Useful for runs
// against an already-synced mirror, and for tests.
type Filesystem struct {
	Dir string
}

func NewFilesystem(dir string) *Filesystem {
	return &Filesystem{Dir: dir}
}

func (f *Filesystem) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Dir, err)
	}

	keys := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	sort.Strings(keys)

	return keys, nil
}

func (f *Filesystem) Fetch(ctx context.Context, key string) ([]byte, error) {
	buf, err := os.ReadFile(filepath.Join(f.Dir, key))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return buf, nil
}
