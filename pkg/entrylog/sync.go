package entrylog

import (
	"sync"
	"time"

	"github.com/downfa11-org/go-bookie/util"
)

// SyncFlusher periodically makes appended entries durable. It only pays for
// an fsync when something was written since the previous interval.
type SyncFlusher struct {
	logger   *EntryLogger
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewSyncFlusher(logger *EntryLogger, interval time.Duration) *SyncFlusher {
	return &SyncFlusher{
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (sf *SyncFlusher) Start() {
	sf.wg.Add(1)
	go func() {
		defer sf.wg.Done()
		sf.run()
	}()
}

// Stop terminates the flush loop and performs one final durable flush if
// writes are still pending.
func (sf *SyncFlusher) Stop() {
	sf.once.Do(func() {
		close(sf.done)
		sf.wg.Wait()
		if sf.logger.TestAndClearSomethingWritten() {
			if err := sf.logger.Flush(); err != nil {
				util.Error("final sync flush: %v", err)
			}
		}
	})
}

func (sf *SyncFlusher) run() {
	ticker := time.NewTicker(sf.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sf.done:
			return
		case <-ticker.C:
			if !sf.logger.TestAndClearSomethingWritten() {
				continue
			}
			if err := sf.logger.Flush(); err != nil {
				util.Error("sync flush: %v", err)
			}
		}
	}
}
