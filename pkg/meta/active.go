package meta

import (
	"sync"

	"github.com/downfa11-org/go-bookie/pkg/types"
)

// ActiveManager is an in-memory active ledger manager. A ledger becomes
// active on first write and stays active until the host deactivates it;
// deactivated ledgers are handed to the garbage collector exactly once.
type ActiveManager struct {
	mu      sync.Mutex
	active  map[int64]struct{}
	garbage map[int64]struct{}
}

func NewActiveManager() *ActiveManager {
	return &ActiveManager{
		active:  make(map[int64]struct{}),
		garbage: make(map[int64]struct{}),
	}
}

// Activate marks a ledger live. A ledger queued for garbage collection is
// pulled back off the queue.
func (am *ActiveManager) Activate(ledgerID int64) {
	am.mu.Lock()
	am.active[ledgerID] = struct{}{}
	delete(am.garbage, ledgerID)
	am.mu.Unlock()
}

// Deactivate marks a ledger dead and queues it for garbage collection.
func (am *ActiveManager) Deactivate(ledgerID int64) {
	am.mu.Lock()
	delete(am.active, ledgerID)
	am.garbage[ledgerID] = struct{}{}
	am.mu.Unlock()
}

func (am *ActiveManager) ContainsActiveLedger(ledgerID int64) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	_, ok := am.active[ledgerID]
	return ok
}

// GarbageCollectLedgers drains the dead ledger queue through gc.
func (am *ActiveManager) GarbageCollectLedgers(gc types.GarbageCollector) {
	am.mu.Lock()
	dead := make([]int64, 0, len(am.garbage))
	for id := range am.garbage {
		dead = append(dead, id)
		delete(am.garbage, id)
	}
	am.mu.Unlock()

	for _, id := range dead {
		gc(id)
	}
}
