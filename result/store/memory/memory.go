package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/brandonshearin/parsssp/result"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

var _ result.Store = (*InMemoryStore)(nil)

// InMemoryStore implements result.Store on top of a map. It is safe for
// concurrent use.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*result.Run
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[uuid.UUID]*result.Run),
	}
}

func (s *InMemoryStore) SaveRun(run *result.Run) error {
	/*saving always modifies the store, so acquire a write lock*/
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == uuid.Nil {
		/*in the highly unlikely case of a UUID collision, pick another one*/
		for {
			run.ID = uuid.New()
			if s.runs[run.ID] == nil {
				break
			}
		}
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemoryStore) FindRun(id uuid.UUID) (*result.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.runs[id]
	if run == nil {
		return nil, xerrors.Errorf("find run %s: %w", id, result.ErrNotFound)
	}
	return run.Clone(), nil
}

func (s *InMemoryStore) Runs(createdAfter time.Time) (result.RunIterator, error) {
	s.mu.RLock()
	var list []*result.Run
	for _, run := range s.runs {
		if run.CreatedAt.After(createdAfter) {
			list = append(list, run)
		}
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return &runIterator{s: s, runs: list}, nil
}
