package io

import (
	"context"
	"os"
	"sync"

	"github.com/fablemap/fablemap/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// FileLoader loads documents directly from the local filesystem with
// caching. Concurrent loads of the same document collapse into one read.
type FileLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFileLoader creates a new filesystem-based document loader.
func NewFileLoader() *FileLoader {
	return &FileLoader{
		cache: make(map[string][]byte),
	}
}

// GetFileText reads the document content from the filesystem.
func (l *FileLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
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

		content, err := os.ReadFile(doc.Key)
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
