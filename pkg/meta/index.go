package meta

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"

	"github.com/downfa11-org/go-bookie/util"
)

const indexSlotSize = 8

// LedgerIndex is a file-backed map from (ledgerId, entryId) to entry log
// locations. Each ledger owns one index file of fixed 8-byte big-endian
// slots keyed by entry id; a zero slot means the entry was never recorded.
// Open per-ledger handles are kept in an LRU cache that closes on eviction.
type LedgerIndex struct {
	dir   string
	cache *lru.Cache
}

type ledgerHandle struct {
	mu     sync.Mutex
	file   *os.File
	mapper *mmap.ReaderAt
}

func NewLedgerIndex(dir string, cacheSize int) (*LedgerIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory %s: %w", dir, err)
	}
	cache, err := lru.NewWithEvict(cacheSize, func(_, value interface{}) {
		value.(*ledgerHandle).close()
	})
	if err != nil {
		return nil, err
	}
	return &LedgerIndex{dir: dir, cache: cache}, nil
}

func (li *LedgerIndex) indexPath(ledgerID int64) string {
	return filepath.Join(li.dir, strconv.FormatInt(ledgerID, 16)+".idx")
}

// handle returns the open handle of a ledger's index file. The file is only
// created when create is set, so reads never bring a deleted index back.
func (li *LedgerIndex) handle(ledgerID int64, create bool) (*ledgerHandle, error) {
	if v, ok := li.cache.Get(ledgerID); ok {
		return v.(*ledgerHandle), nil
	}
	path := li.indexPath(ledgerID)
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger index %s: %w", path, err)
	}
	h := &ledgerHandle{file: f}
	li.cache.Add(ledgerID, h)
	return h, nil
}

// PutEntryOffset records the location of an entry. The file grows as needed.
func (li *LedgerIndex) PutEntryOffset(ledgerID, entryID, location int64) error {
	h, err := li.handle(ledgerID, true)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var slot [indexSlotSize]byte
	binary.BigEndian.PutUint64(slot[:], uint64(location))
	if _, err := h.file.WriteAt(slot[:], entryID*indexSlotSize); err != nil {
		return fmt.Errorf("write index slot for ledger %d entry %d: %w", ledgerID, entryID, err)
	}
	return nil
}

// GetEntryOffset resolves the location of an entry. Reads go through a
// memory-mapped view of the index file, refreshed when the file has grown
// past the mapped length.
func (li *LedgerIndex) GetEntryOffset(ledgerID, entryID int64) (int64, error) {
	h, err := li.handle(ledgerID, false)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	slotEnd := entryID*indexSlotSize + indexSlotSize
	if h.mapper == nil || int64(h.mapper.Len()) < slotEnd {
		if err := h.refreshMapper(); err != nil {
			return 0, err
		}
	}
	if int64(h.mapper.Len()) < slotEnd {
		return 0, fmt.Errorf("no location recorded for ledger %d entry %d", ledgerID, entryID)
	}

	var slot [indexSlotSize]byte
	if _, err := h.mapper.ReadAt(slot[:], entryID*indexSlotSize); err != nil {
		return 0, fmt.Errorf("read index slot for ledger %d entry %d: %w", ledgerID, entryID, err)
	}
	location := int64(binary.BigEndian.Uint64(slot[:]))
	if location == 0 {
		return 0, fmt.Errorf("no location recorded for ledger %d entry %d", ledgerID, entryID)
	}
	return location, nil
}

// DeleteLedger drops the per-ledger index state and unlinks the index file.
func (li *LedgerIndex) DeleteLedger(ledgerID int64) error {
	li.cache.Remove(ledgerID)
	if err := os.Remove(li.indexPath(ledgerID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove ledger index for %d: %w", ledgerID, err)
	}
	return nil
}

// Close releases every open handle.
func (li *LedgerIndex) Close() {
	li.cache.Purge()
}

func (h *ledgerHandle) refreshMapper() error {
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("sync ledger index %s: %w", h.file.Name(), err)
	}
	if h.mapper != nil {
		if err := h.mapper.Close(); err != nil {
			util.Error("failed to close index mapper: %v", err)
		}
		h.mapper = nil
	}
	mapper, err := mmap.Open(h.file.Name())
	if err != nil {
		return err
	}
	h.mapper = mapper
	return nil
}

func (h *ledgerHandle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mapper != nil {
		if err := h.mapper.Close(); err != nil {
			util.Error("failed to close index mapper: %v", err)
		}
		h.mapper = nil
	}
	if err := h.file.Close(); err != nil {
		util.Error("failed to close index file: %v", err)
	}
}
