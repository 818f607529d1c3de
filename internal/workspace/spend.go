package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hiveworks/hive/internal/ctxutil"
)

// spendLedgerFile is the monthly spend ledger under the store root.
const spendLedgerFile = "budget/ledger.json"

// SpendMonth formats a time as the ledger key for its month.
func SpendMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// AddSpend adds an amount in USD to the given month's spend and returns
// the month's new total. The read-modify-write runs under the ledger
// file lock so concurrent workers never lose an increment.
func (s *FileStore) AddSpend(ctx context.Context, month string, amount float64) (float64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	path := filepath.Join(s.baseDir, spendLedgerFile)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return 0, fmt.Errorf("creating ledger directory: %w", err)
	}

	lock, err := s.acquireLock(ctx, path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = releaseLock(lock) }()

	ledger, err := readLedger(path)
	if err != nil {
		return 0, err
	}

	ledger[month] += amount
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding spend ledger: %w", err)
	}
	if err := atomicWrite(path, data, filePerm); err != nil {
		return 0, err
	}
	return ledger[month], nil
}

// Spend returns the given month's spend in USD. A missing ledger is
// zero spend.
func (s *FileStore) Spend(ctx context.Context, month string) (float64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	ledger, err := readLedger(filepath.Join(s.baseDir, spendLedgerFile))
	if err != nil {
		return 0, err
	}
	return ledger[month], nil
}

func readLedger(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- fixed path under baseDir
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]float64), nil
		}
		return nil, fmt.Errorf("reading spend ledger: %w", err)
	}

	ledger := make(map[string]float64)
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decoding spend ledger: %w", err)
	}
	return ledger, nil
}
