package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
	"github.com/octobees/icp-finder/internal/render"
	"github.com/octobees/icp-finder/internal/repository"
)

var (
	ErrSessionNotFound = repository.ErrSessionNotFound
	ErrEmptyPrompt     = errors.New("prompt is required")
)

// SessionFinder runs one prompt against an accumulator.
type SessionFinder interface {
	RunSession(ctx context.Context, prompt string, acc *finder.Accumulator) (finder.Result, int, error)
}

// SessionTurnResult is the outcome of a prompt submitted to a session.
type SessionTurnResult struct {
	Result  finder.Result
	Added   int
	Total   int
	Summary string
}

// SessionService runs conversational searches whose results accumulate per session.
type SessionService struct {
	repo         repository.SessionsRepository
	finder       SessionFinder
	summaryLimit int
}

func NewSessionService(repo repository.SessionsRepository, f SessionFinder, summaryLimit int) *SessionService {
	if summaryLimit <= 0 {
		summaryLimit = render.DefaultSummaryLimit
	}
	return &SessionService{repo: repo, finder: f, summaryLimit: summaryLimit}
}

func (s *SessionService) Create(ctx context.Context) (*entity.Session, error) {
	return s.repo.Create(ctx)
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	return s.repo.Get(ctx, id)
}

// Search runs prompt with an accumulator seeded from the session's stored
// results, then persists the new results and the turn.
func (s *SessionService) Search(ctx context.Context, id uuid.UUID, prompt string) (SessionTurnResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return SessionTurnResult{}, ErrEmptyPrompt
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return SessionTurnResult{}, err
	}

	stored, err := s.repo.ListResults(ctx, id)
	if err != nil {
		return SessionTurnResult{}, err
	}
	acc := finder.NewAccumulator(stored...)
	seeded := acc.Len()

	res, added, err := s.finder.RunSession(ctx, prompt, acc)
	if err != nil {
		return SessionTurnResult{}, err
	}

	fresh := acc.Results()[seeded:]
	if _, err := s.repo.AppendResults(ctx, id, fresh); err != nil {
		return SessionTurnResult{}, fmt.Errorf("store session results: %w", err)
	}
	turn := entity.Turn{
		Prompt:     prompt,
		SearchType: res.Intent.SearchType,
		Found:      len(res.All()),
		Added:      added,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.AppendTurn(ctx, id, turn); err != nil {
		return SessionTurnResult{}, fmt.Errorf("store session turn: %w", err)
	}

	return SessionTurnResult{
		Result:  res,
		Added:   added,
		Total:   acc.Len(),
		Summary: render.Summary(res, s.summaryLimit),
	}, nil
}

// Export writes every accumulated result of the session as CSV.
func (s *SessionService) Export(ctx context.Context, id uuid.UUID, w io.Writer) error {
	results, err := s.Results(ctx, id)
	if err != nil {
		return err
	}
	return render.WriteCSV(w, results)
}

// Results returns the session's accumulated results in first-seen order.
func (s *SessionService) Results(ctx context.Context, id uuid.UUID) ([]entity.SearchResult, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListResults(ctx, id)
}

func (s *SessionService) Clear(ctx context.Context, id uuid.UUID) error {
	return s.repo.ClearResults(ctx, id)
}
