package bookie_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/downfa11-org/go-bookie/pkg/bookie"
	"github.com/downfa11-org/go-bookie/pkg/config"
)

func newTestBookie(t *testing.T) *bookie.Bookie {
	t.Helper()
	cfg := &config.Config{
		LedgerDirs:         []string{t.TempDir()},
		EntryLogSizeLimit:  1 << 20,
		GcWaitTimeMS:       60_000,
		FlushIntervalMS:    50,
		IndexDir:           t.TempDir(),
		OpenIndexCacheSize: 16,
	}
	b, err := bookie.NewBookie(cfg)
	if err != nil {
		t.Fatalf("NewBookie: %v", err)
	}
	t.Cleanup(b.Shutdown)
	return b
}

func TestBookieAddReadRoundTrip(t *testing.T) {
	b := newTestBookie(t)

	payload := []byte("hello ledger")
	if _, err := b.AddEntry(1, 0, payload); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	got, err := b.ReadEntry(1, 0)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read back %q, want %q", got, payload)
	}
}

func TestBookieManyLedgersInterleaved(t *testing.T) {
	b := newTestBookie(t)

	const ledgers = 5
	const entries = 20
	for entryID := int64(0); entryID < entries; entryID++ {
		for ledgerID := int64(0); ledgerID < ledgers; ledgerID++ {
			payload := []byte(fmt.Sprintf("ledger %d entry %d", ledgerID, entryID))
			if _, err := b.AddEntry(ledgerID, entryID, payload); err != nil {
				t.Fatalf("AddEntry(%d, %d): %v", ledgerID, entryID, err)
			}
		}
	}

	for ledgerID := int64(0); ledgerID < ledgers; ledgerID++ {
		for entryID := int64(0); entryID < entries; entryID++ {
			got, err := b.ReadEntry(ledgerID, entryID)
			if err != nil {
				t.Fatalf("ReadEntry(%d, %d): %v", ledgerID, entryID, err)
			}
			want := fmt.Sprintf("ledger %d entry %d", ledgerID, entryID)
			if string(got) != want {
				t.Errorf("ReadEntry(%d, %d) = %q, want %q", ledgerID, entryID, got, want)
			}
		}
	}
}

func TestBookieReadUnknownEntry(t *testing.T) {
	b := newTestBookie(t)

	if _, err := b.AddEntry(1, 0, []byte("only entry")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := b.ReadEntry(1, 7); err == nil {
		t.Errorf("expected error for never-written entry")
	}
	if _, err := b.ReadEntry(99, 0); err == nil {
		t.Errorf("expected error for unknown ledger")
	}
}

func TestBookieWritesActivateLedgers(t *testing.T) {
	b := newTestBookie(t)

	if _, err := b.AddEntry(42, 0, []byte("live")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if !b.Active.ContainsActiveLedger(42) {
		t.Errorf("written ledger not active")
	}
	b.Active.Deactivate(42)
	if b.Active.ContainsActiveLedger(42) {
		t.Errorf("ledger still active after deactivation")
	}
}
