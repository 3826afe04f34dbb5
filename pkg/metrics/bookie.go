package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EntriesAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entries_added_total",
		Help: "Total number of entries appended to the entry log",
	})

	BytesAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entry_log_bytes_appended_total",
		Help: "Total bytes appended to entry log files, frame overhead included",
	})

	EntryReads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entry_reads_total",
		Help: "Total number of entries read back from the entry log",
	})

	EntryReadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entry_read_errors_total",
		Help: "Total number of failed entry reads",
	})

	SegmentRollovers = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entry_log_rollovers_total",
		Help: "Total number of entry log files created",
	})

	SegmentsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_entry_logs_deleted_total",
		Help: "Total number of entry log files removed by the garbage collector",
	})

	GcCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookie_gc_cycles_total",
		Help: "Total number of completed garbage collection cycles",
	})

	ActiveLogID = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bookie_active_entry_log_id",
		Help: "Id of the entry log currently open for appends",
	})
)
