package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/lock"
	"lanshare-backend/internal/shared/telemetry"
)

// Service manages text notes. Writes to one note are serialized; the last
// write wins.
type Service struct {
	Repo Repo
	Now  func() time.Time

	locks *lock.Keyed
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now, locks: lock.NewKeyed()}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create stores a new note under a fresh id.
func (s *Service) Create(ctx context.Context, content string) (Note, error) {
	now := s.now()
	n := Note{ID: ids.New(), Content: content, CreatedAt: now, UpdatedAt: now}
	if err := s.Repo.Write(ctx, n); err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

// Get returns a note by id.
func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	if !ids.Valid(id) {
		return Note{}, ErrNotFound
	}
	n, err := s.Repo.Read(ctx, id)
	if errors.Is(err, ErrCorruptRecord) {
		s.logCorrupt(id, err)
		return Note{}, ErrNotFound
	}
	return n, err
}

// Put overwrites the note's content, creating the note under id if it does
// not exist or its record is unreadable. A nil content leaves an existing note's content unchanged.
func (s *Service) Put(ctx context.Context, id string, content *string) (Note, error) {
	return s.update(ctx, id, func(n *Note) {
		if content != nil {
			n.Content = *content
		}
	})
}

// Append joins fragment to the end of the note with Separator.
func (s *Service) Append(ctx context.Context, id, fragment string) (Note, error) {
	return s.update(ctx, id, func(n *Note) {
		if n.Content == "" {
			n.Content = fragment
			return
		}
		n.Content += Separator + fragment
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*Note)) (Note, error) {
	if !ids.Valid(id) {
		return Note{}, fmt.Errorf("%w: invalid note id", ErrInvalidInput)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	now := s.now()
	n, err := s.Repo.Read(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		n = Note{ID: id, CreatedAt: now}
	case errors.Is(err, ErrCorruptRecord):
		s.logCorrupt(id, err)
		n = Note{ID: id, CreatedAt: now}
	case err != nil:
		return Note{}, err
	}

	mutate(&n)
	n.UpdatedAt = now
	if err := s.Repo.Write(ctx, n); err != nil {
		return Note{}, fmt.Errorf("write note %s: %w", id, err)
	}
	return n, nil
}

func (s *Service) logCorrupt(id string, err error) {
	telemetry.Error("ledger.corrupt_record", map[string]any{
		"kind":  "note",
		"id":    id,
		"error": err,
	})
}
