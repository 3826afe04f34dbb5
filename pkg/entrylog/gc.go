package entrylog

import (
	"os"
	"sync"
	"time"

	"github.com/downfa11-org/go-bookie/pkg/metrics"
	"github.com/downfa11-org/go-bookie/util"
)

// garbageCollector periodically removes entry logs no active ledger
// references anymore. It owns no state of its own; it prunes the segment
// ledger sets, has the registry close the channels of empty segments, finds
// their files through the directory manager and unlinks them.
type garbageCollector struct {
	logger   *EntryLogger
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

func newGarbageCollector(logger *EntryLogger, interval time.Duration) *garbageCollector {
	return &garbageCollector{
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (gc *garbageCollector) start() {
	gc.wg.Add(1)
	go func() {
		defer gc.wg.Done()
		gc.run()
	}()
}

func (gc *garbageCollector) stop() {
	close(gc.done)
	gc.wg.Wait()
}

func (gc *garbageCollector) run() {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gc.done:
			return
		case <-ticker.C:
		}

		collab := gc.logger.collaborators()
		if collab.Coord == nil || !collab.Coord.Ready() ||
			collab.LedgerIndex == nil || collab.ActiveLedgers == nil {
			continue
		}
		if gc.logger.segmentIndexEmpty() {
			continue
		}

		gc.doGcLedgers(collab)
		gc.doGcEntryLogs(collab)
		metrics.GcCycles.Inc()
	}
}

// doGcLedgers drops per-ledger index state for every ledger the active
// ledger manager reports dead. Failures are logged and the next ledger is
// attempted.
func (gc *garbageCollector) doGcLedgers(collab Collaborators) {
	collab.ActiveLedgers.GarbageCollectLedgers(func(ledgerID int64) {
		if err := collab.LedgerIndex.DeleteLedger(ledgerID); err != nil {
			util.Error("deleting ledger %d index: %v", ledgerID, err)
		}
	})
}

// doGcEntryLogs prunes dead ledgers from every segment ledger set and
// unlinks segments whose set became empty.
func (gc *garbageCollector) doGcEntryLogs(collab Collaborators) {
	gc.logger.ledgersBySegment.Range(func(key, value any) bool {
		logID := key.(int64)
		ledgers := value.(*ledgerSet)

		for _, ledgerID := range ledgers.snapshot() {
			if !collab.ActiveLedgers.ContainsActiveLedger(ledgerID) {
				ledgers.remove(ledgerID)
			}
		}
		if !ledgers.empty() {
			return true
		}

		util.Info("deleting entry log %x as it has no active ledgers", logID)
		gc.logger.registry.remove(logID)
		path, err := gc.logger.dirs.findFile(logID)
		if err != nil {
			util.Error("entry log %s slated for deletion could not be found: %v", segmentFileName(logID), err)
			return true
		}
		if err := os.Remove(path); err != nil {
			util.Warn("removing garbage collected entry log %s: %v", path, err)
			return true
		}
		gc.logger.ledgersBySegment.Delete(logID)
		metrics.SegmentsDeleted.Inc()
		return true
	})
}

func (el *EntryLogger) segmentIndexEmpty() bool {
	empty := true
	el.ledgersBySegment.Range(func(any, any) bool {
		empty = false
		return false
	})
	return empty
}
