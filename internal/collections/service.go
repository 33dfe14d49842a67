package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/lock"
	"lanshare-backend/internal/shared/telemetry"
	"lanshare-backend/internal/shares"
)

// Service manages collections. Every read-modify-write of one collection
// runs under that collection's lock; different collections never contend.
type Service struct {
	Repo   Repo
	Shares *shares.Service
	Now    func() time.Time

	locks *lock.Keyed
}

// NewService constructs a Service.
func NewService(repo Repo, sharesSvc *shares.Service) *Service {
	return &Service{Repo: repo, Shares: sharesSvc, Now: time.Now, locks: lock.NewKeyed()}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create persists an empty collection under a fresh id.
func (s *Service) Create(ctx context.Context) (Collection, error) {
	now := s.now()
	c := Collection{
		ID:        ids.New(),
		Files:     []File{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Write(ctx, c); err != nil {
		return Collection{}, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

// Get returns a collection by id.
func (s *Service) Get(ctx context.Context, id string) (Collection, error) {
	if !ids.Valid(id) {
		return Collection{}, ErrNotFound
	}
	return s.Repo.Read(ctx, id)
}

// AppendFile adds an artifact to the collection. An unknown collection id is
// created on first append so clients can pick ids up front.
func (s *Service) AppendFile(ctx context.Context, collectionID string, meta shares.Metadata) (Collection, error) {
	if !ids.Valid(collectionID) {
		return Collection{}, fmt.Errorf("%w: invalid collection id", ErrInvalidInput)
	}

	unlock := s.locks.Lock(collectionID)
	defer unlock()

	now := s.now()
	c, err := s.Repo.Read(ctx, collectionID)
	switch {
	case errors.Is(err, ErrNotFound):
		c = Collection{ID: collectionID, Files: []File{}, CreatedAt: now}
	case errors.Is(err, ErrCorruptRecord):
		telemetry.Error("ledger.corrupt_record", map[string]any{
			"kind":  "collection",
			"id":    collectionID,
			"error": err,
		})
		return Collection{}, err
	case err != nil:
		return Collection{}, err
	}

	c.Files = append(c.Files, fileFromMetadata(meta))
	c.UpdatedAt = now
	if err := s.Repo.Write(ctx, c); err != nil {
		return Collection{}, fmt.Errorf("append to collection %s: %w", collectionID, err)
	}
	return c, nil
}

// Upload stores a file as an artifact and appends it to the collection.
func (s *Service) Upload(ctx context.Context, collectionID string, in shares.UploadInput) (File, Collection, error) {
	if !ids.Valid(collectionID) {
		return File{}, Collection{}, fmt.Errorf("%w: invalid collection id", ErrInvalidInput)
	}
	in.CollectionID = collectionID

	meta, err := s.Shares.Upload(ctx, in)
	if err != nil {
		return File{}, Collection{}, err
	}

	c, err := s.AppendFile(ctx, collectionID, meta)
	if err != nil {
		if delErr := s.Shares.Delete(context.WithoutCancel(ctx), meta.ID); delErr != nil {
			telemetry.Warn("collections.rollback_failed", map[string]any{
				"collection_id": collectionID,
				"share_id":      meta.ID,
				"error":         delErr,
			})
		}
		return File{}, Collection{}, err
	}
	return fileFromMetadata(meta), c, nil
}

// ResolveFile opens a member artifact for download.
func (s *Service) ResolveFile(ctx context.Context, collectionID, fileID string) (shares.Download, error) {
	c, err := s.Get(ctx, collectionID)
	if err != nil {
		return shares.Download{}, err
	}
	if !c.HasFile(fileID) {
		return shares.Download{}, ErrNotMember
	}
	return s.Shares.Resolve(ctx, fileID)
}

// List returns all readable collections.
func (s *Service) List(ctx context.Context) ([]Collection, error) {
	return s.Repo.List(ctx)
}

// DeleteIfStale removes the collection when it has not changed since cutoff.
// The check and delete run under the collection lock so a concurrent append
// keeps the collection alive.
func (s *Service) DeleteIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.Repo.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !c.UpdatedAt.Before(cutoff) {
		return false, nil
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
