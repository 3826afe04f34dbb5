package config

import (
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/downfa11-org/go-bookie/util"
	"gopkg.in/yaml.v3"
)

// Config represents the bookie configuration including tunable storage options
type Config struct {
	// Entry log storage
	LedgerDirs        []string `yaml:"ledger_dirs" json:"ledger.dirs"`
	EntryLogSizeLimit int64    `yaml:"entry_log_size_limit" json:"entry.log.size.limit"`
	GcWaitTimeMS      int      `yaml:"gc_wait_time_ms" json:"gc.wait.time.ms"`
	FlushIntervalMS   int      `yaml:"flush_interval_ms" json:"flush.interval.ms"`

	// Ledger index
	IndexDir           string `yaml:"index_dir" json:"index.dir"`
	OpenIndexCacheSize int    `yaml:"open_index_cache_size" json:"open.index.cache.size"`

	// Observability
	LogLevel        util.LogLevel `yaml:"log_level" json:"log_level"`
	EnableExporter  bool          `yaml:"enable_exporter" json:"enable.exporter"`
	ExporterPort    int           `yaml:"exporter_port" json:"exporter.port"`
	HealthCheckPort int           `yaml:"health_check_port" json:"health.check.port"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	configPath := flag.String("config", "", "Path to YAML/JSON config file")
	ledgerDirsStr := flag.String("ledger-dirs", "bookie-logs", "Comma-separated entry log directories")
	sizeLimitStr := flag.String("entry-log-size-limit", "2147483648", "Entry log rollover threshold in bytes")
	gcWaitStr := flag.String("gc-wait-time", "1000", "Garbage collector interval (ms)")
	flushIntervalStr := flag.String("flush-interval", "100", "Sync flusher interval (ms)")
	indexDirStr := flag.String("index-dir", "", "Ledger index directory (defaults to first ledger dir)")
	indexCacheStr := flag.String("open-index-cache", "128", "Open per-ledger index handle cache size")
	logLevelStr := flag.String("log-level", "info", "Log Level (debug, info, warn, error)")
	exporterStr := flag.String("exporter", "true", "Enable Prometheus exporter")
	exporterPortStr := flag.String("exporter-port", "9100", "Exporter port")
	healthPortStr := flag.String("health-port", "9080", "Health check server port")

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	flag.Parse()

	cfg.LedgerDirs = splitDirs(*ledgerDirsStr)
	cfg.EntryLogSizeLimit = util.ParseInt64(*sizeLimitStr, 2<<30)
	cfg.GcWaitTimeMS = util.ParseInt(*gcWaitStr, 1000)
	cfg.FlushIntervalMS = util.ParseInt(*flushIntervalStr, 100)
	cfg.IndexDir = *indexDirStr
	cfg.OpenIndexCacheSize = util.ParseInt(*indexCacheStr, 128)
	cfg.LogLevel = util.ParseLevel(*logLevelStr)
	cfg.EnableExporter = util.ParseBool(*exporterStr, true)
	cfg.ExporterPort = util.ParseInt(*exporterPortStr, 9100)
	cfg.HealthCheckPort = util.ParseInt(*healthPortStr, 9080)

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}

		if strings.HasSuffix(*configPath, ".json") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)

	return cfg, nil
}

func splitDirs(s string) []string {
	var dirs []string
	for _, dir := range strings.Split(s, ",") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (cfg *Config) Normalize() {
	if len(cfg.LedgerDirs) == 0 {
		cfg.LedgerDirs = []string{"bookie-logs"}
	}
	if cfg.EntryLogSizeLimit < 1024 {
		cfg.EntryLogSizeLimit = 2 << 30
	}
	if cfg.GcWaitTimeMS <= 0 {
		cfg.GcWaitTimeMS = 1000
	}
	if cfg.FlushIntervalMS <= 0 {
		cfg.FlushIntervalMS = 100
	}
	if strings.TrimSpace(cfg.IndexDir) == "" {
		cfg.IndexDir = cfg.LedgerDirs[0]
	}
	if cfg.OpenIndexCacheSize <= 0 {
		cfg.OpenIndexCacheSize = 128
	}
	if cfg.ExporterPort <= 0 {
		cfg.ExporterPort = 9100
	}
	if cfg.HealthCheckPort <= 0 {
		cfg.HealthCheckPort = 9080
	}
}
