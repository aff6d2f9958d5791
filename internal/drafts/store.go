package drafts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store is a flat id -> Draft mapping. Writes are last-writer-wins per id.
type Store interface {
	Put(ctx context.Context, draft Draft) error
	Get(ctx context.Context, id uuid.UUID) (Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Draft, error)
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]Draft, error)
}

// MemoryStore keeps serialized drafts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[uuid.UUID][]byte{}}
}

func (s *MemoryStore) Put(_ context.Context, draft Draft) error {
	raw, err := encode(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = raw
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Draft, error) {
	s.mu.RLock()
	raw, ok := s.drafts[id]
	s.mu.RUnlock()
	if !ok {
		return Draft{}, ErrNotFound
	}
	return decode(raw)
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]Draft, error) {
	return s.filter(func(Draft) bool { return true })
}

func (s *MemoryStore) ListByModel(_ context.Context, modelID uuid.UUID) ([]Draft, error) {
	return s.filter(func(d Draft) bool { return d.Model.ID == modelID })
}

func (s *MemoryStore) filter(keep func(Draft) bool) ([]Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Draft, 0, len(s.drafts))
	for _, raw := range s.drafts {
		d, err := decode(raw)
		if err != nil {
			return nil, err
		}
		if keep(d) {
			out = append(out, d)
		}
	}
	newestFirst(out)
	return out, nil
}
