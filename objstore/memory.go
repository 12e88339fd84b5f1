package objstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory keeps objects in a map and records fetched keys.
type Memory struct {
	mutex   sync.Mutex
	objects map[string][]byte

	// Keys fetched, in order. Tests inspect this to assert on
	// (absent) retrieval.
	Fetches []string

	// FailFetches makes the next N fetches fail.
	FailFetches int
}

func NewMemory(objects map[string][]byte) *Memory {
	if objects == nil {
		objects = map[string][]byte{}
	}
	return &Memory{objects: objects}
}

func (m *Memory) Put(key string, body []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.objects[key] = body
}

func (m *Memory) List(ctx context.Context) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

func (m *Memory) Fetch(ctx context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Fetches = append(m.Fetches, key)

	if m.FailFetches > 0 {
		m.FailFetches--
		return nil, fmt.Errorf("transient failure fetching %s", key)
	}

	body, found := m.objects[key]
	if !found {
		return nil, fmt.Errorf("no such object: %s", key)
	}

	return body, nil
}
