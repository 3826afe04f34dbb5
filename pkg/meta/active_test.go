package meta_test

import (
	"sort"
	"testing"

	"github.com/downfa11-org/go-bookie/pkg/meta"
)

func TestActiveManagerLifecycle(t *testing.T) {
	am := meta.NewActiveManager()

	if am.ContainsActiveLedger(1) {
		t.Errorf("ledger 1 active before activation")
	}
	am.Activate(1)
	am.Activate(2)
	if !am.ContainsActiveLedger(1) || !am.ContainsActiveLedger(2) {
		t.Errorf("activated ledgers not reported active")
	}

	am.Deactivate(1)
	if am.ContainsActiveLedger(1) {
		t.Errorf("ledger 1 still active after deactivation")
	}
	if !am.ContainsActiveLedger(2) {
		t.Errorf("ledger 2 lost on unrelated deactivation")
	}
}

func TestGarbageCollectLedgersDrainsOnce(t *testing.T) {
	am := meta.NewActiveManager()
	am.Activate(1)
	am.Activate(2)
	am.Deactivate(1)
	am.Deactivate(2)

	var collected []int64
	am.GarbageCollectLedgers(func(id int64) {
		collected = append(collected, id)
	})
	sort.Slice(collected, func(i, j int) bool { return collected[i] < collected[j] })
	if len(collected) != 2 || collected[0] != 1 || collected[1] != 2 {
		t.Fatalf("collected %v, want [1 2]", collected)
	}

	// The queue drains, so a second pass sees nothing.
	am.GarbageCollectLedgers(func(id int64) {
		t.Errorf("ledger %d collected twice", id)
	})
}

func TestReactivationAfterDeactivate(t *testing.T) {
	am := meta.NewActiveManager()
	am.Activate(7)
	am.Deactivate(7)
	am.Activate(7)

	if !am.ContainsActiveLedger(7) {
		t.Errorf("reactivated ledger not active")
	}
	am.GarbageCollectLedgers(func(id int64) {
		t.Errorf("reactivated ledger %d still collected", id)
	})
}
