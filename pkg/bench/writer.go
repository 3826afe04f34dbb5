package bench

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/downfa11-org/go-bookie/pkg/bookie"
)

// Writer drives appends against a single ledger. With Verify set, every tenth
// entry is read back and compared against what was written.
type Writer struct {
	Bookie     *bookie.Bookie
	LedgerID   int64
	NumEntries int
	EntrySize  int
	Verify     bool
}

func (w *Writer) Run() error {
	payload := make([]byte, w.EntrySize)
	if _, err := rand.Read(payload); err != nil {
		return fmt.Errorf("generate payload: %w", err)
	}

	for entryID := int64(0); entryID < int64(w.NumEntries); entryID++ {
		if _, err := w.Bookie.AddEntry(w.LedgerID, entryID, payload); err != nil {
			return fmt.Errorf("append ledger %d entry %d: %w", w.LedgerID, entryID, err)
		}
		if w.Verify && entryID%10 == 0 {
			got, err := w.Bookie.ReadEntry(w.LedgerID, entryID)
			if err != nil {
				return fmt.Errorf("read back ledger %d entry %d: %w", w.LedgerID, entryID, err)
			}
			if !bytes.Equal(got, payload) {
				return fmt.Errorf("ledger %d entry %d read back %d bytes that do not match the append", w.LedgerID, entryID, len(got))
			}
		}
	}
	return nil
}
