package meta_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/downfa11-org/go-bookie/pkg/meta"
)

func TestLedgerIndexPutGet(t *testing.T) {
	li, err := meta.NewLedgerIndex(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("NewLedgerIndex: %v", err)
	}
	defer li.Close()

	if err := li.PutEntryOffset(1, 0, 0x100001028); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}
	if err := li.PutEntryOffset(1, 5, 0x200000400); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}

	loc, err := li.GetEntryOffset(1, 0)
	if err != nil {
		t.Fatalf("GetEntryOffset: %v", err)
	}
	if loc != 0x100001028 {
		t.Errorf("entry 0 location %#x, want %#x", loc, 0x100001028)
	}
	loc, err = li.GetEntryOffset(1, 5)
	if err != nil {
		t.Fatalf("GetEntryOffset: %v", err)
	}
	if loc != 0x200000400 {
		t.Errorf("entry 5 location %#x, want %#x", loc, 0x200000400)
	}
}

func TestLedgerIndexMissingEntry(t *testing.T) {
	li, err := meta.NewLedgerIndex(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("NewLedgerIndex: %v", err)
	}
	defer li.Close()

	if err := li.PutEntryOffset(1, 10, 42); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}

	// Entry 3 sits in a zero slot below the recorded entry.
	if _, err := li.GetEntryOffset(1, 3); err == nil {
		t.Errorf("expected error for never-recorded entry in a hole")
	}
	// Entry 20 lies past the end of the index file.
	if _, err := li.GetEntryOffset(1, 20); err == nil {
		t.Errorf("expected error for entry past the index end")
	}
}

func TestLedgerIndexOverwrite(t *testing.T) {
	li, err := meta.NewLedgerIndex(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("NewLedgerIndex: %v", err)
	}
	defer li.Close()

	if err := li.PutEntryOffset(2, 0, 111); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}
	if err := li.PutEntryOffset(2, 0, 222); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}
	loc, err := li.GetEntryOffset(2, 0)
	if err != nil {
		t.Fatalf("GetEntryOffset: %v", err)
	}
	if loc != 222 {
		t.Errorf("overwritten slot returned %d, want 222", loc)
	}
}

func TestLedgerIndexDeleteLedger(t *testing.T) {
	dir := t.TempDir()
	li, err := meta.NewLedgerIndex(dir, 16)
	if err != nil {
		t.Fatalf("NewLedgerIndex: %v", err)
	}
	defer li.Close()

	if err := li.PutEntryOffset(10, 0, 99); err != nil {
		t.Fatalf("PutEntryOffset: %v", err)
	}
	if err := li.DeleteLedger(10); err != nil {
		t.Fatalf("DeleteLedger: %v", err)
	}

	if _, err := li.GetEntryOffset(10, 0); err == nil {
		t.Errorf("expected error reading a deleted ledger")
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".idx" && f.Name() == "a.idx" {
			t.Errorf("index file %s still on disk after delete", f.Name())
		}
	}

	// Deleting a ledger that was never written is not an error.
	if err := li.DeleteLedger(999); err != nil {
		t.Errorf("DeleteLedger on unknown ledger: %v", err)
	}
}

func TestLedgerIndexHandleEviction(t *testing.T) {
	// A cache of two forces evictions while writes keep flowing.
	li, err := meta.NewLedgerIndex(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("NewLedgerIndex: %v", err)
	}
	defer li.Close()

	for ledgerID := int64(0); ledgerID < 8; ledgerID++ {
		if err := li.PutEntryOffset(ledgerID, 0, ledgerID+100); err != nil {
			t.Fatalf("PutEntryOffset ledger %d: %v", ledgerID, err)
		}
	}
	// Evicted handles are reopened transparently on the next access.
	for ledgerID := int64(0); ledgerID < 8; ledgerID++ {
		loc, err := li.GetEntryOffset(ledgerID, 0)
		if err != nil {
			t.Fatalf("GetEntryOffset ledger %d: %v", ledgerID, err)
		}
		if loc != ledgerID+100 {
			t.Errorf("ledger %d location %d, want %d", ledgerID, loc, ledgerID+100)
		}
	}
}
