package entrylog

// CurrentLogID returns the id of the segment currently open for appends.
func (el *EntryLogger) CurrentLogID() int64 {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.logID
}

// LedgersInLog reports the scanned ledger set of a sealed segment. The
// second return is false while the segment has not been scanned (or was
// garbage collected).
func (el *EntryLogger) LedgersInLog(logID int64) ([]int64, bool) {
	v, ok := el.ledgersBySegment.Load(logID)
	if !ok {
		return nil, false
	}
	return v.(*ledgerSet).snapshot(), true
}
