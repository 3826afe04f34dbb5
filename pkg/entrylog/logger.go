package entrylog

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/downfa11-org/go-bookie/pkg/config"
	"github.com/downfa11-org/go-bookie/pkg/metrics"
	"github.com/downfa11-org/go-bookie/pkg/types"
	"github.com/downfa11-org/go-bookie/util"
)

// logFileHeaderSize is the fixed block at the head of every entry log file.
// The first four bytes carry the fingerprint, the rest is reserved.
const logFileHeaderSize = 1024

const entrySizeSanityLimit = 1024 * 1024

var logFileFingerprint = []byte("BKLO")

// Collaborators are the external components the garbage collector needs.
// They may be wired after construction; GC cycles are skipped until all of
// them are present.
type Collaborators struct {
	Coord         types.CoordinationClient
	LedgerIndex   types.LedgerIndex
	ActiveLedgers types.ActiveLedgerManager
}

// EntryLogger multiplexes entries of many ledgers into a family of rolling
// append-only log files. Appends return a 64-bit location the ledger index
// stores; reads resolve a location back to the entry payload.
type EntryLogger struct {
	sizeLimit int64

	// mu serializes every mutation of the active segment: appends, flushes,
	// rollover and the dirty flag.
	mu               sync.Mutex
	logID            int64
	active           *BufferedChannel
	somethingWritten bool

	dirs     *dirManager
	registry *channelRegistry

	// ledgersBySegment maps a sealed segment to the set of ledgers whose
	// entries it holds. The active segment is folded in after it rolls.
	ledgersBySegment sync.Map // int64 -> *ledgerSet

	collabMu sync.RWMutex
	collab   Collaborators

	gc *garbageCollector
}

// NewEntryLogger opens an entry log store over the configured ledger
// directories, recovers the highest assigned segment id, creates a fresh
// active segment and starts the garbage collector.
func NewEntryLogger(cfg *config.Config) (*EntryLogger, error) {
	dirs, err := newDirManager(cfg.LedgerDirs)
	if err != nil {
		return nil, err
	}

	el := &EntryLogger{
		sizeLimit: cfg.EntryLogSizeLimit,
		dirs:      dirs,
	}
	el.registry = newChannelRegistry(dirs)
	el.logID = dirs.maxLastLogID() + 1

	el.mu.Lock()
	err = el.createLogID(el.logID)
	el.mu.Unlock()
	if err != nil {
		return nil, err
	}

	el.gc = newGarbageCollector(el, time.Duration(cfg.GcWaitTimeMS)*time.Millisecond)
	el.gc.start()
	return el, nil
}

// SetCollaborators wires the coordination client, the ledger index and the
// active ledger manager. Garbage collection stays dormant until this is
// called.
func (el *EntryLogger) SetCollaborators(c Collaborators) {
	el.collabMu.Lock()
	el.collab = c
	el.collabMu.Unlock()
}

func (el *EntryLogger) collaborators() Collaborators {
	el.collabMu.RLock()
	defer el.collabMu.RUnlock()
	return el.collab
}

// AddEntry appends an entry to the active segment and returns its location.
// The first 16 bytes of entry must carry the big-endian ledger and entry ids;
// the store trusts the caller's framing. Rolls over to a new segment when the
// size limit would be crossed.
func (el *EntryLogger) AddEntry(ledgerID int64, entry []byte) (int64, error) {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.active.Position()+int64(len(entry))+4 > el.sizeLimit {
		if err := el.createLogID(el.logID + 1); err != nil {
			return 0, err
		}
	}

	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(entry)))
	if _, err := el.active.Write(sizeBuf[:]); err != nil {
		return 0, fmt.Errorf("append entry size for ledger %d: %w", ledgerID, err)
	}
	pos := el.active.Position()
	if _, err := el.active.Write(entry); err != nil {
		return 0, fmt.Errorf("append entry for ledger %d: %w", ledgerID, err)
	}
	el.somethingWritten = true

	metrics.EntriesAdded.Inc()
	metrics.BytesAppended.Add(float64(len(entry) + 4))
	return makeLocation(el.logID, pos), nil
}

// ReadEntry resolves a location back to the entry payload and validates that
// the stored identity matches the request.
func (el *EntryLogger) ReadEntry(ledgerID, entryID, location int64) ([]byte, error) {
	logID := locationLogID(location)
	pos := locationPos(location) - 4 // back up over the size prefix

	ch, err := el.registry.getChannelForLogID(logID)
	if err != nil {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("read ledger %d at location %d: %w", ledgerID, location, err)
	}

	var sizeBuf [4]byte
	if n, err := ch.ReadAt(sizeBuf[:], pos); err != nil {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("read entry size from log %x: %w", logID, err)
	} else if n != len(sizeBuf) {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("%w: entry size in log %x at %d", ErrShortRead, logID, pos)
	}
	pos += 4
	entrySize := int64(binary.BigEndian.Uint32(sizeBuf[:]))
	if entrySize > entrySizeSanityLimit {
		util.Error("sanity check failed for entry size %d at position %d in log %x", entrySize, pos, logID)
	}

	data := make([]byte, entrySize)
	if n, err := ch.ReadAt(data, pos); err != nil {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("read entry from log %x: %w", logID, err)
	} else if int64(n) != entrySize {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("%w: ledger %d entry %d in log %x at %d (%d != %d)",
			ErrShortRead, ledgerID, entryID, logID, pos, n, entrySize)
	}

	storedLedger := int64(binary.BigEndian.Uint64(data[0:8]))
	if storedLedger != ledgerID {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("%w: log %x at %d holds ledger %d, not %d",
			ErrIdentityMismatch, logID, pos, storedLedger, ledgerID)
	}
	storedEntry := int64(binary.BigEndian.Uint64(data[8:16]))
	if storedEntry != entryID {
		metrics.EntryReadErrors.Inc()
		return nil, fmt.Errorf("%w: log %x at %d holds entry %d, not %d",
			ErrIdentityMismatch, logID, pos, storedEntry, entryID)
	}

	metrics.EntryReads.Inc()
	return data, nil
}

// Flush forces buffered writes of the active segment to durable storage.
func (el *EntryLogger) Flush() error {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.flushLocked()
}

func (el *EntryLogger) flushLocked() error {
	if el.active == nil {
		return nil
	}
	return el.active.Flush(true)
}

// TestAndClearSomethingWritten reports whether an append happened since the
// last call and resets the flag. The sync flusher uses it to skip fsyncs on
// idle intervals.
func (el *EntryLogger) TestAndClearSomethingWritten() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	dirty := el.somethingWritten
	el.somethingWritten = false
	return dirty
}

// createLogID seals the current active segment and creates a new one with
// the given id. Caller holds el.mu.
func (el *EntryLogger) createLogID(logID int64) error {
	if logID > math.MaxUint32 {
		return fmt.Errorf("log id %d exceeds the 32-bit location budget", logID)
	}
	if el.active != nil {
		if err := el.active.Flush(true); err != nil {
			return fmt.Errorf("flush sealed log %x: %w", el.logID, err)
		}
	}

	dir := el.dirs.pickDir()
	path := filepath.Join(dir, segmentFileName(logID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("create entry log %s: %w", path, err)
	}

	ch, err := NewBufferedChannel(f, writeChannelBufferSize)
	if err != nil {
		_ = f.Close()
		return err
	}
	header := make([]byte, logFileHeaderSize)
	copy(header, logFileFingerprint)
	if _, err := ch.Write(header); err != nil {
		_ = ch.Close()
		return fmt.Errorf("write header of entry log %s: %w", path, err)
	}

	el.logID = logID
	el.active = ch
	el.registry.put(logID, ch)
	metrics.ActiveLogID.Set(float64(logID))
	metrics.SegmentRollovers.Inc()

	if err := el.dirs.setLastLogID(logID); err != nil {
		return err
	}

	el.extractLedgersFromEntryLogs()
	return nil
}

// Shutdown stops the garbage collector, flushes the active segment durably
// and closes every open channel. Flush errors at this point are logged and
// swallowed.
func (el *EntryLogger) Shutdown() {
	el.gc.stop()
	if err := el.Flush(); err != nil {
		util.Error("flush entry log during shutdown, log may be left corrupted: %v", err)
	}
	el.registry.closeAll()
}
