package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Published(FrameValue)
	m.Published(FrameValue)
	m.Published(FrameDiscovery)
	if got := testutil.ToFloat64(m.publishes.WithLabelValues(FrameValue)); got != 2 {
		t.Fatalf("expected value publishes 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.publishes.WithLabelValues(FrameDiscovery)); got != 1 {
		t.Fatalf("expected discovery publishes 1, got %f", got)
	}

	m.PublishFailed(FrameGrouped)
	if got := testutil.ToFloat64(m.publishFailures.WithLabelValues(FrameGrouped)); got != 1 {
		t.Fatalf("expected grouped failures 1, got %f", got)
	}

	m.ReaderFailed("voltage")
	if got := testutil.ToFloat64(m.readerFailures.WithLabelValues("voltage")); got != 1 {
		t.Fatalf("expected voltage reader failures 1, got %f", got)
	}

	m.ConnectWait()
	m.ConnectWait()
	if got := testutil.ToFloat64(m.connectWaits); got != 2 {
		t.Fatalf("expected connect waits 2, got %f", got)
	}

	m.SetConnected(true)
	if got := testutil.ToFloat64(m.connected); got != 1 {
		t.Fatalf("expected connected gauge 1, got %f", got)
	}
	m.SetConnected(false)
	if got := testutil.ToFloat64(m.connected); got != 0 {
		t.Fatalf("expected connected gauge 0, got %f", got)
	}

	m.ObserveCycle(150 * time.Millisecond)
	if samples := testutil.CollectAndCount(m.cycleDuration); samples != 1 {
		t.Fatalf("expected cycle histogram to record 1 sample, got %d", samples)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	m.Published(FrameValue)
	m.PublishFailed(FrameValue)
	m.ReaderFailed("cpu_load")
	m.ConnectWait()
	m.SetConnected(true)
	m.ObserveCycle(time.Second)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	New(reg)
}
