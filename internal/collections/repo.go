package collections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lanshare-backend/internal/shared/storage/ledger"
)

// Repo persists collection records.
type Repo interface {
	Write(ctx context.Context, c Collection) error
	Read(ctx context.Context, id string) (Collection, error)
	List(ctx context.Context) ([]Collection, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepo implements Repo on a ledger.Ledger.
type LedgerRepo struct {
	Ledger ledger.Ledger
}

// NewLedgerRepo constructs a LedgerRepo.
func NewLedgerRepo(l ledger.Ledger) *LedgerRepo {
	return &LedgerRepo{Ledger: l}
}

func (r *LedgerRepo) Write(ctx context.Context, c Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.ID, err)
	}
	return r.Ledger.Put(ctx, ledger.KindCollection, c.ID, data)
}

func (r *LedgerRepo) Read(ctx context.Context, id string) (Collection, error) {
	data, err := r.Ledger.Get(ctx, ledger.KindCollection, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Collection{}, ErrNotFound
		}
		return Collection{}, err
	}
	return decode(id, data)
}

// List skips records that fail to decode.
func (r *LedgerRepo) List(ctx context.Context) ([]Collection, error) {
	entries, err := r.Ledger.List(ctx, ledger.KindCollection)
	if err != nil {
		return nil, err
	}
	out := make([]Collection, 0, len(entries))
	for _, entry := range entries {
		c, err := decode(entry.ID, entry.Data)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *LedgerRepo) Delete(ctx context.Context, id string) error {
	return r.Ledger.Delete(ctx, ledger.KindCollection, id)
}

func decode(id string, data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrCorruptRecord, id, err)
	}
	if c.ID != id {
		return Collection{}, fmt.Errorf("%w: %s: id mismatch", ErrCorruptRecord, id)
	}
	if c.Files == nil {
		c.Files = []File{}
	}
	return c, nil
}

var _ Repo = (*LedgerRepo)(nil)
