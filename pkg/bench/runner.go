package bench

import (
	"fmt"
	"sync"
	"time"

	"github.com/downfa11-org/go-bookie/pkg/bookie"
)

type BenchmarkRunner struct {
	Bookie           *bookie.Bookie
	NumWriters       int
	EntriesPerWriter int
	EntrySize        int
	VerifyReads      bool
}

func NewBenchmarkRunner(b *bookie.Bookie, writers, entries, size int, verify bool) *BenchmarkRunner {
	return &BenchmarkRunner{
		Bookie:           b,
		NumWriters:       writers,
		EntriesPerWriter: entries,
		EntrySize:        size,
		VerifyReads:      verify,
	}
}

func (b *BenchmarkRunner) Run() {
	totalEntries := b.NumWriters * b.EntriesPerWriter
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < b.NumWriters; i++ {
		wg.Add(1)
		go func(wid int) {
			defer wg.Done()
			w := &Writer{
				Bookie:     b.Bookie,
				LedgerID:   int64(wid),
				NumEntries: b.EntriesPerWriter,
				EntrySize:  b.EntrySize,
				Verify:     b.VerifyReads,
			}
			if err := w.Run(); err != nil {
				fmt.Printf("Writer %d error: %v\n", wid, err)
			}
		}(i)
	}
	wg.Wait()

	duration := time.Since(start)
	throughput := float64(totalEntries) / duration.Seconds()
	bytesPerSec := throughput * float64(b.EntrySize)

	fmt.Printf("\nBENCHMARK RESULT [entrylog]\n")
	fmt.Printf("-------------------------------------\n")
	fmt.Printf(" Writers       : %d\n", b.NumWriters)
	fmt.Printf(" Entry Size    : %d B\n", b.EntrySize)
	fmt.Printf(" Total Entries : %d\n", totalEntries)
	fmt.Printf(" Duration      : %v\n", duration)
	fmt.Printf(" Throughput    : %.2f entries/sec\n", throughput)
	fmt.Printf(" Bandwidth     : %.2f MB/sec\n", bytesPerSec/(1<<20))
	fmt.Printf("-------------------------------------\n")
}
