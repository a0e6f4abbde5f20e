package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("expand", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome(OutcomeSuccess)
	pr.AddFilesScanned(3)
	pr.AddCallSites("text", 4)
	pr.AddCallSites("title", 1)
	pr.AddNewKeys("text", 2)
	pr.AddNewKeys("title", 0)
	pr.SetStaleKeys(5)
	pr.IncDiagnostics("not_a_string_literal")
	pr.SetWorkers(8)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	assert.InDelta(t, 3, value(t, mfs, "fittext_files_scanned_total", ""), 0)
	assert.InDelta(t, 4, value(t, mfs, "fittext_call_sites_total", "text"), 0)
	assert.InDelta(t, 2, value(t, mfs, "fittext_new_keys_total", "text"), 0)
	assert.InDelta(t, 5, value(t, mfs, "fittext_stale_keys", ""), 0)
	assert.InDelta(t, 1, value(t, mfs, "fittext_run_outcomes_total", "success"), 0)
}

// value returns the counter or gauge sample of family name whose single label
// equals label ("" for unlabeled metrics).
func value(t *testing.T, mfs []*dto.MetricFamily, name, label string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && (len(m.GetLabel()) != 1 || m.GetLabel()[0].GetValue() != label) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveRunDuration(time.Second)
		pr.AddCallSites("text", 1)
		pr.SetStaleKeys(1)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddFilesScanned(1)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fittext_files_scanned_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
