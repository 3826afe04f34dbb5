package entrylog

import (
	"fmt"
	"os"
	"sync"

	"github.com/downfa11-org/go-bookie/util"
)

// channelRegistry maps segment ids to open buffered channels. It is the only
// owner of read-side channels; the writer additionally holds a reference to
// the channel of the active segment.
type channelRegistry struct {
	mu       sync.RWMutex
	channels map[int64]*BufferedChannel
	dirs     *dirManager
}

func newChannelRegistry(dirs *dirManager) *channelRegistry {
	return &channelRegistry{
		channels: make(map[int64]*BufferedChannel),
		dirs:     dirs,
	}
}

// getChannelForLogID returns the open channel for a segment, opening the
// file on a miss. Losing a racing open closes the extra handle and returns
// the installed winner.
func (cr *channelRegistry) getChannelForLogID(logID int64) (*BufferedChannel, error) {
	cr.mu.RLock()
	ch := cr.channels[logID]
	cr.mu.RUnlock()
	if ch != nil {
		return ch, nil
	}

	path, err := cr.dirs.findFile(logID)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	adviseSequential(f)

	newCh, err := NewBufferedChannel(f, readChannelBufferSize)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	if ch := cr.channels[logID]; ch != nil {
		if err := newCh.Close(); err != nil {
			util.Warn("closing redundant channel for log %x: %v", logID, err)
		}
		return ch, nil
	}
	cr.channels[logID] = newCh
	return newCh, nil
}

// put installs a channel for a freshly created segment.
func (cr *channelRegistry) put(logID int64, ch *BufferedChannel) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.channels[logID] = ch
}

// remove evicts and closes the channel of a segment. Closing before unlink
// matters on hosts that refuse to remove open files.
func (cr *channelRegistry) remove(logID int64) {
	cr.mu.Lock()
	ch := cr.channels[logID]
	delete(cr.channels, logID)
	cr.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			util.Warn("closing channel for garbage collected log %x: %v", logID, err)
		}
	}
}

// closeAll closes every registered channel. Used on shutdown.
func (cr *channelRegistry) closeAll() {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for logID, ch := range cr.channels {
		if err := ch.Close(); err != nil {
			util.Warn("closing channel for log %x: %v", logID, err)
		}
		delete(cr.channels, logID)
	}
}
