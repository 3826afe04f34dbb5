package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/downfa11-org/go-bookie/pkg/bookie"
	"github.com/downfa11-org/go-bookie/pkg/config"
	"github.com/downfa11-org/go-bookie/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting bookie with ledger dirs %v\n", cfg.LedgerDirs)

	b, err := bookie.NewBookie(cfg)
	if err != nil {
		log.Fatalf("Bookie failed to start: %v", err)
	}
	b.Coord.Register()

	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}
	go func() {
		http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		addr := fmt.Sprintf(":%d", cfg.HealthCheckPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Printf("health check server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	b.Shutdown()
}
