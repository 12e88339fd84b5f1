// Package objstore abstracts the remote store holding dated schedule
// snapshots.
package objstore

import "context"

// A thing capable of enumerating snapshot object keys and fetching
// their contents.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}
