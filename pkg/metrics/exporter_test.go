package metrics_test

import (
	"testing"

	"github.com/downfa11-org/go-bookie/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	_ = g.Write(m)
	return m.GetGauge().GetValue()
}

func TestCountersAccumulate(t *testing.T) {
	initialAdds := getCounterValue(metrics.EntriesAdded)
	initialBytes := getCounterValue(metrics.BytesAppended)

	metrics.EntriesAdded.Inc()
	metrics.EntriesAdded.Inc()
	metrics.BytesAppended.Add(128)

	if got := getCounterValue(metrics.EntriesAdded); got != initialAdds+2 {
		t.Fatalf("EntriesAdded expected %v, got %v", initialAdds+2, got)
	}
	if got := getCounterValue(metrics.BytesAppended); got != initialBytes+128 {
		t.Fatalf("BytesAppended expected %v, got %v", initialBytes+128, got)
	}
}

func TestActiveLogIDGauge(t *testing.T) {
	metrics.ActiveLogID.Set(7)
	if got := getGaugeValue(metrics.ActiveLogID); got != 7 {
		t.Fatalf("ActiveLogID expected 7, got %v", got)
	}
}
