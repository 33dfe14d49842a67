package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lanshare-backend/internal/shared/storage/ledger"
)

// Repo persists notes.
type Repo interface {
	Write(ctx context.Context, n Note) error
	Read(ctx context.Context, id string) (Note, error)
}

// LedgerRepo implements Repo on a ledger.Ledger.
type LedgerRepo struct {
	Ledger ledger.Ledger
}

// NewLedgerRepo constructs a LedgerRepo.
func NewLedgerRepo(l ledger.Ledger) *LedgerRepo {
	return &LedgerRepo{Ledger: l}
}

func (r *LedgerRepo) Write(ctx context.Context, n Note) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode note %s: %w", n.ID, err)
	}
	return r.Ledger.Put(ctx, ledger.KindNote, n.ID, data)
}

func (r *LedgerRepo) Read(ctx context.Context, id string) (Note, error) {
	data, err := r.Ledger.Get(ctx, ledger.KindNote, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	var n Note
	if err := json.Unmarshal(data, &n); err != nil {
		return Note{}, fmt.Errorf("%w: %s: %w", ErrCorruptRecord, id, err)
	}
	if n.ID != id {
		return Note{}, fmt.Errorf("%w: %s: id mismatch", ErrCorruptRecord, id)
	}
	return n, nil
}

var _ Repo = (*LedgerRepo)(nil)
