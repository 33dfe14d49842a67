package shares

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/metrics"
	"lanshare-backend/internal/shared/storage/object"
	"lanshare-backend/internal/shared/telemetry"
	"lanshare-backend/internal/shared/util"
)

const (
	DefaultRetention   = 24 * time.Hour
	defaultContentType = "application/octet-stream"
)

// Service stores artifacts and resolves them back into downloads.
type Service struct {
	Store     object.ObjectStore
	Repo      MetadataRepo
	Retention time.Duration
	Now       func() time.Time
}

// NewService constructs a Service. A non-positive retention falls back to 24h.
func NewService(store object.ObjectStore, repo MetadataRepo, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{Store: store, Repo: repo, Retention: retention, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Upload writes the blob first and the metadata second. The artifact is
// retrievable only once both writes succeed.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Metadata, error) {
	if in.Body == nil {
		return Metadata{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if in.CollectionID != "" && !ids.Valid(in.CollectionID) {
		return Metadata{}, fmt.Errorf("%w: invalid collection id", ErrInvalidInput)
	}

	id := ids.New()
	res, err := s.Store.Put(ctx, id, in.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Metadata{}, ctxErr
		}
		return Metadata{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	uploadedAt := s.now()
	meta := Metadata{
		ID:                 id,
		OriginalName:       util.SanitizeFileName(in.FileName),
		MimeType:           pickContentType(in.ContentType, res.ContentType),
		SizeBytes:          res.SizeBytes,
		UploadedAt:         uploadedAt,
		ExpiresAt:          uploadedAt.Add(s.Retention),
		ParentCollectionID: in.CollectionID,
		Checksum:           res.Checksum,
	}

	if err := s.Repo.Write(ctx, meta); err != nil {
		telemetry.Error("shares.metadata_write_failed", map[string]any{
			"share_id": id,
			"error":    err,
		})
		// Best effort; the orphan sweep catches blobs this misses.
		if delErr := s.Store.Delete(context.WithoutCancel(ctx), id); delErr != nil && !errors.Is(delErr, object.ErrNotFound) {
			telemetry.Warn("shares.orphan_left", map[string]any{"share_id": id, "error": delErr})
		}
		return Metadata{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	metrics.IncUploads()
	metrics.ObserveUploadSize(meta.SizeBytes)
	telemetry.Info("shares.uploaded", map[string]any{
		"share_id":      id,
		"size_bytes":    meta.SizeBytes,
		"mime_type":     meta.MimeType,
		"collection_id": in.CollectionID,
	})
	return meta, nil
}

// Inspect returns the metadata record regardless of expiry.
func (s *Service) Inspect(ctx context.Context, id string) (Metadata, error) {
	if !ids.Valid(id) {
		return Metadata{}, ErrNotFound
	}
	meta, err := s.Repo.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			telemetry.Error("ledger.corrupt_record", map[string]any{
				"kind":  "artifact",
				"id":    id,
				"error": err,
			})
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	return meta, nil
}

// Resolve looks up an artifact and opens its blob. It returns ErrExpired for
// artifacts past expiry that the reaper has not removed yet, and ErrNotFound
// for unknown ids or records whose blob is missing.
func (s *Service) Resolve(ctx context.Context, id string) (Download, error) {
	meta, err := s.Inspect(ctx, id)
	if err != nil {
		return Download{}, err
	}
	if meta.Expired(s.now()) {
		return Download{}, ErrExpired
	}

	body, err := s.Store.Open(ctx, id)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Download{}, ErrNotFound
		}
		return Download{}, fmt.Errorf("open artifact %s: %w", id, err)
	}

	return Download{
		Meta:        meta,
		Body:        body,
		FileName:    util.DispositionFileName(meta.OriginalName),
		ContentType: pickContentType(meta.MimeType, ""),
	}, nil
}

// List returns all readable metadata records, oldest first.
func (s *Service) List(ctx context.Context) ([]Metadata, error) {
	return s.Repo.List(ctx)
}

// Delete removes both halves of an artifact. It returns ErrNotFound only when
// neither the blob nor the record existed.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrNotFound
	}

	_, readErr := s.Repo.Read(ctx, id)
	hadRecord := readErr == nil || errors.Is(readErr, ErrCorruptRecord)

	blobErr := s.Store.Delete(ctx, id)
	hadBlob := blobErr == nil
	if errors.Is(blobErr, object.ErrNotFound) {
		blobErr = nil
	}
	if blobErr != nil {
		blobErr = fmt.Errorf("delete blob %s: %w", id, blobErr)
	}

	metaErr := s.Repo.Delete(ctx, id)
	if metaErr != nil {
		metaErr = fmt.Errorf("delete metadata %s: %w", id, metaErr)
	}

	if err := errors.Join(blobErr, metaErr); err != nil {
		return err
	}
	if !hadRecord && !hadBlob {
		return ErrNotFound
	}
	return nil
}

func pickContentType(declared, sniffed string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != defaultContentType {
		return declared
	}
	if sniffed != "" {
		return sniffed
	}
	if declared != "" {
		return declared
	}
	return defaultContentType
}
