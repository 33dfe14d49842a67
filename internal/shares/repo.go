package shares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"lanshare-backend/internal/shared/storage/ledger"
	"lanshare-backend/internal/shared/telemetry"
)

// MetadataRepo persists artifact metadata.
type MetadataRepo interface {
	Write(ctx context.Context, meta Metadata) error
	Read(ctx context.Context, id string) (Metadata, error)
	List(ctx context.Context) ([]Metadata, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepo implements MetadataRepo on a ledger.Ledger.
type LedgerRepo struct {
	Ledger ledger.Ledger
}

// NewLedgerRepo constructs a LedgerRepo.
func NewLedgerRepo(l ledger.Ledger) *LedgerRepo {
	return &LedgerRepo{Ledger: l}
}

func (r *LedgerRepo) Write(ctx context.Context, meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", meta.ID, err)
	}
	return r.Ledger.Put(ctx, ledger.KindArtifact, meta.ID, data)
}

// Read returns ErrNotFound for unknown ids and ErrCorruptRecord when the
// stored record cannot be decoded.
func (r *LedgerRepo) Read(ctx context.Context, id string) (Metadata, error) {
	data, err := r.Ledger.Get(ctx, ledger.KindArtifact, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	return decodeMetadata(id, data)
}

// List returns every decodable record ordered by upload time. Corrupt
// records are logged and skipped.
func (r *LedgerRepo) List(ctx context.Context) ([]Metadata, error) {
	entries, err := r.Ledger.List(ctx, ledger.KindArtifact)
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(entries))
	for _, entry := range entries {
		meta, err := decodeMetadata(entry.ID, entry.Data)
		if err != nil {
			telemetry.Warn("ledger.corrupt_record", map[string]any{
				"kind":  string(ledger.KindArtifact),
				"id":    entry.ID,
				"error": err,
			})
			continue
		}
		out = append(out, meta)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

func (r *LedgerRepo) Delete(ctx context.Context, id string) error {
	return r.Ledger.Delete(ctx, ledger.KindArtifact, id)
}

func decodeMetadata(id string, data []byte) (Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %w", ErrCorruptRecord, id, err)
	}
	if meta.ID != id || meta.ExpiresAt.IsZero() {
		return Metadata{}, fmt.Errorf("%w: %s: missing id or expiresAt", ErrCorruptRecord, id)
	}
	return meta, nil
}

var _ MetadataRepo = (*LedgerRepo)(nil)
