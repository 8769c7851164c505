package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
)

// MemorySessionsRepository keeps sessions in process memory. It is used when
// no database is configured and by the CLI chat loop.
type MemorySessionsRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*memorySession
	now      func() time.Time
}

type memorySession struct {
	session entity.Session
	results *finder.Accumulator
}

func NewMemorySessionsRepository() *MemorySessionsRepository {
	return &MemorySessionsRepository{
		sessions: make(map[uuid.UUID]*memorySession),
		now:      time.Now,
	}
}

func (r *MemorySessionsRepository) Create(_ context.Context) (*entity.Session, error) {
	now := r.now()
	s := &memorySession{
		session: entity.Session{ID: uuid.New(), Turns: []entity.Turn{}, CreatedAt: now, UpdatedAt: now},
		results: finder.NewAccumulator(),
	}

	r.mu.Lock()
	r.sessions[s.session.ID] = s
	r.mu.Unlock()

	out := s.session
	return &out, nil
}

func (r *MemorySessionsRepository) Get(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := s.session
	out.Turns = append([]entity.Turn{}, s.session.Turns...)
	return &out, nil
}

func (r *MemorySessionsRepository) AppendTurn(_ context.Context, id uuid.UUID, turn entity.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = r.now()
	}
	s.session.Turns = append(s.session.Turns, turn)
	s.session.UpdatedAt = r.now()
	return nil
}

func (r *MemorySessionsRepository) AppendResults(_ context.Context, id uuid.UUID, results []entity.SearchResult) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	s.session.UpdatedAt = r.now()
	return s.results.Add(results...), nil
}

func (r *MemorySessionsRepository) ListResults(_ context.Context, id uuid.UUID) ([]entity.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	results := s.results.Results()
	if results == nil {
		results = []entity.SearchResult{}
	}
	return results, nil
}

func (r *MemorySessionsRepository) ClearResults(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.results.Clear()
	s.session.UpdatedAt = r.now()
	return nil
}
