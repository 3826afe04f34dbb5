package bookie

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/downfa11-org/go-bookie/pkg/config"
	"github.com/downfa11-org/go-bookie/pkg/coord"
	"github.com/downfa11-org/go-bookie/pkg/entrylog"
	"github.com/downfa11-org/go-bookie/pkg/meta"
	"github.com/downfa11-org/go-bookie/util"
)

const entryHeaderSize = 16

// Bookie hosts the entry log store together with its collaborators: the
// ledger index, the active ledger manager and the coordination client. It is
// the safe surface: callers hand over raw entry bytes and the bookie frames
// the 16-byte (ledgerId, entryId) identity prefix itself.
type Bookie struct {
	cfg *config.Config

	Coord  *coord.Client
	Active *meta.ActiveManager
	Index  *meta.LedgerIndex

	logger  *entrylog.EntryLogger
	flusher *entrylog.SyncFlusher
}

func NewBookie(cfg *config.Config) (*Bookie, error) {
	index, err := meta.NewLedgerIndex(cfg.IndexDir, cfg.OpenIndexCacheSize)
	if err != nil {
		return nil, err
	}

	logger, err := entrylog.NewEntryLogger(cfg)
	if err != nil {
		index.Close()
		return nil, err
	}

	b := &Bookie{
		cfg:    cfg,
		Coord:  coord.NewClient(),
		Active: meta.NewActiveManager(),
		Index:  index,
		logger: logger,
	}
	logger.SetCollaborators(entrylog.Collaborators{
		Coord:         b.Coord,
		LedgerIndex:   index,
		ActiveLedgers: b.Active,
	})

	b.flusher = entrylog.NewSyncFlusher(logger, time.Duration(cfg.FlushIntervalMS)*time.Millisecond)
	b.flusher.Start()
	return b, nil
}

// AddEntry appends data to ledgerID under entryID and records the returned
// location in the ledger index.
func (b *Bookie) AddEntry(ledgerID, entryID int64, data []byte) (int64, error) {
	entry := make([]byte, entryHeaderSize+len(data))
	binary.BigEndian.PutUint64(entry[0:8], uint64(ledgerID))
	binary.BigEndian.PutUint64(entry[8:16], uint64(entryID))
	copy(entry[entryHeaderSize:], data)

	b.Active.Activate(ledgerID)
	location, err := b.logger.AddEntry(ledgerID, entry)
	if err != nil {
		return 0, err
	}
	if err := b.Index.PutEntryOffset(ledgerID, entryID, location); err != nil {
		return 0, err
	}
	return location, nil
}

// ReadEntry resolves the location of (ledgerID, entryID) through the ledger
// index and returns the entry data without the identity prefix.
func (b *Bookie) ReadEntry(ledgerID, entryID int64) ([]byte, error) {
	location, err := b.Index.GetEntryOffset(ledgerID, entryID)
	if err != nil {
		return nil, err
	}
	entry, err := b.logger.ReadEntry(ledgerID, entryID, location)
	if err != nil {
		return nil, err
	}
	if len(entry) < entryHeaderSize {
		return nil, fmt.Errorf("entry of ledger %d entry %d shorter than its identity prefix", ledgerID, entryID)
	}
	return entry[entryHeaderSize:], nil
}

// EntryLogger exposes the underlying store for hosts that manage their own
// framing.
func (b *Bookie) EntryLogger() *entrylog.EntryLogger {
	return b.logger
}

// Shutdown stops background actors and flushes pending writes.
func (b *Bookie) Shutdown() {
	util.Info("bookie %s shutting down", b.Coord.InstanceID())
	b.flusher.Stop()
	b.logger.Shutdown()
	b.Index.Close()
}
