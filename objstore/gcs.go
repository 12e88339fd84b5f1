package objstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS serves snapshots from a Google Cloud Storage bucket.
type GCS struct {
	bucket *storage.BucketHandle
}

func NewGCS(ctx context.Context, bucketName string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCS{bucket: client.Bucket(bucketName)}, nil
}

func (g *GCS) List(ctx context.Context) ([]string, error) {
	keys := []string{}

	objects := g.bucket.Objects(ctx, nil)
	for {
		attrs, err := objects.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating over bucket: %w", err)
		}
		keys = append(keys, attrs.Name)
	}

	return keys, nil
}

func (g *GCS) Fetch(ctx context.Context, key string) ([]byte, error) {
	reader, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}

	return body, nil
}
