package entrylog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/downfa11-org/go-bookie/util"
)

// extractLedgersFromEntryLogs walks every sealed segment that has not been
// scanned yet and records the set of ledgers each one holds. The active
// segment is deliberately skipped; it is folded in after it rolls. Runs at
// startup and after every rollover.
func (el *EntryLogger) extractLedgersFromEntryLogs() {
	for logID := int64(0); logID < el.logID; logID++ {
		if _, ok := el.ledgersBySegment.Load(logID); ok {
			continue
		}
		util.Info("extracting ledgers from entry log %x", logID)

		ch, err := el.registry.getChannelForLogID(logID)
		if err != nil {
			// Missing files are expected: the segment may have been garbage
			// collected in a previous run.
			util.Warn("entry log %s not found in ledger directories: %v", segmentFileName(logID), err)
			continue
		}

		ledgers := newLedgerSet()
		if err := scanSegment(ch, ledgers); err != nil {
			util.Info("premature end scanning entry log %x, recovery keeps the partial set: %v", logID, err)
		}
		el.ledgersBySegment.Store(logID, ledgers)
	}
}

// scanSegment reads frames from the post-header position to the end of the
// channel, collecting the ledger id of every complete frame. A torn final
// frame surfaces as an error after the prior frames were recorded.
func scanSegment(ch *BufferedChannel, ledgers *ledgerSet) error {
	var sizeBuf [4]byte
	pos := int64(logFileHeaderSize)
	for pos < ch.Size() {
		if n, err := ch.ReadAt(sizeBuf[:], pos); err != nil {
			return err
		} else if n != len(sizeBuf) {
			return fmt.Errorf("%w: frame size at %d", ErrShortRead, pos)
		}
		pos += 4
		entrySize := int64(binary.BigEndian.Uint32(sizeBuf[:]))
		if entrySize > entrySizeSanityLimit {
			util.Error("sanity check failed for entry size %d at position %d", entrySize, pos)
		}

		data := make([]byte, entrySize)
		if n, err := ch.ReadAt(data, pos); err != nil {
			return err
		} else if int64(n) != entrySize {
			return fmt.Errorf("%w: frame at %d (%d != %d)", ErrShortRead, pos, n, entrySize)
		}
		if entrySize < 8 {
			return errors.New("frame too small to carry a ledger id")
		}
		ledgers.add(int64(binary.BigEndian.Uint64(data[0:8])))
		pos += entrySize
	}
	return nil
}
