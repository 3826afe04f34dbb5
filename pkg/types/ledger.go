package types

// GarbageCollector receives the id of a ledger the active ledger manager no
// longer considers live.
type GarbageCollector func(ledgerID int64)

// ActiveLedgerManager is the external authority on ledger liveness.
type ActiveLedgerManager interface {
	ContainsActiveLedger(ledgerID int64) bool
	GarbageCollectLedgers(gc GarbageCollector)
}

// LedgerIndex persists entry locations and can drop all per-ledger state on
// a garbage collection callback.
type LedgerIndex interface {
	PutEntryOffset(ledgerID, entryID, location int64) error
	GetEntryOffset(ledgerID, entryID int64) (int64, error)
	DeleteLedger(ledgerID int64) error
}

// CoordinationClient gates background maintenance until the coordination
// service session is established.
type CoordinationClient interface {
	Ready() bool
}
