package artifact

import (
	"context"
	"sync"

	"github.com/pitchlab/tactics.report/internal/fault"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore is the in-process Store implementation used by tests and
// single-node deployments. A RWMutex gives concurrent readers; same-key
// writers serialize on the write lock, last write wins.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]object{}}
}

// PutObject implements Store.
func (s *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.Cancelled, err, "put %s", key)
	}
	if key == "" {
		return fault.New(fault.BadInput, "empty artifact key")
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.objects[key] = object{data: cp, contentType: contentType}
	s.mu.Unlock()
	return nil
}

// GetObject implements Store.
func (s *MemoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.Wrap(fault.Cancelled, err, "get %s", key)
	}
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fault.New(fault.NotFound, "artifact %s", key)
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

// PutTable implements Store.
func (s *MemoryStore) PutTable(ctx context.Context, key string, table *Table) error {
	data, err := EncodeTable(table)
	if err != nil {
		return err
	}
	return s.PutObject(ctx, key, data, TableContentType)
}

// GetTable implements Store.
func (s *MemoryStore) GetTable(ctx context.Context, key string) (*Table, error) {
	data, err := s.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeTable(data)
}

// Stat implements Store.
func (s *MemoryStore) Stat(ctx context.Context, key string) (ObjectStat, error) {
	if err := ctx.Err(); err != nil {
		return ObjectStat{}, fault.Wrap(fault.Cancelled, err, "stat %s", key)
	}
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return ObjectStat{}, fault.New(fault.NotFound, "artifact %s", key)
	}
	return ObjectStat{Size: int64(len(obj.data)), ContentType: obj.contentType}, nil
}

// Remove implements Store. Removing a missing key reports NotFound.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.Cancelled, err, "remove %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fault.New(fault.NotFound, "artifact %s", key)
	}
	delete(s.objects, key)
	return nil
}
