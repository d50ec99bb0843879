package s3

import (
	"context"
	"sync"

	"github.com/fablemap/fablemap/internal/storage"
	"github.com/fablemap/fablemap/pkg/loader"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

// S3Loader loads raw document bytes from the S3 upload bucket, keyed
// by the document's storage key. Results are cached per key.
type S3Loader struct {
	client *awss3.Client
	bucket string

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3Loader creates a new S3-backed document loader.
func NewS3Loader(client *awss3.Client, bucket string) *S3Loader {
	return &S3Loader{
		client: client,
		bucket: bucket,
		cache:  make(map[string][]byte),
	}
}

// GetFileText downloads the document content from S3.
func (l *S3Loader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	key := loader.CacheKey(doc)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := storage.GetFile(ctx, l.client, l.bucket, doc.Key)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
