package entrylog

// A location packs the segment id into the high 32 bits and the file offset
// of the first payload byte into the low 32 bits. Segment ids therefore must
// stay below 1<<32 for locations to round-trip.

func makeLocation(logID, pos int64) int64 {
	return logID<<32 | pos
}

func locationLogID(location int64) int64 {
	return location >> 32
}

func locationPos(location int64) int64 {
	return location & 0xffffffff
}
