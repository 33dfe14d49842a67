package ledger_test

import (
	"testing"

	"lanshare-backend/internal/shared/storage/ledger"
	"lanshare-backend/internal/shared/storage/ledger/ledgertest"
)

func TestMemoryLedger(t *testing.T) {
	ledgertest.Run(t, ledger.NewMemory())
}
