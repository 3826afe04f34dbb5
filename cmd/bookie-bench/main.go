package main

import (
	"flag"
	"log"
	"strings"

	"github.com/downfa11-org/go-bookie/pkg/bench"
	"github.com/downfa11-org/go-bookie/pkg/bookie"
	"github.com/downfa11-org/go-bookie/pkg/config"
)

func main() {
	dirs := flag.String("ledger-dirs", "bench-logs", "Comma-separated entry log directories")
	writers := flag.Int("writers", 4, "Concurrent writers, one ledger each")
	entries := flag.Int("entries", 10000, "Entries appended per writer")
	size := flag.Int("entry-size", 1024, "Payload size in bytes")
	verify := flag.Bool("verify", false, "Read back a sample of the appended entries")
	flag.Parse()

	cfg := &config.Config{LedgerDirs: strings.Split(*dirs, ",")}
	cfg.Normalize()

	b, err := bookie.NewBookie(cfg)
	if err != nil {
		log.Fatalf("Bookie failed to start: %v", err)
	}
	defer b.Shutdown()

	bench.NewBenchmarkRunner(b, *writers, *entries, *size, *verify).Run()
}
