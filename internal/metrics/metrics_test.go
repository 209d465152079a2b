package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveProcessed("spam")
	m.ObserveProcessed("spam")
	m.ObserveProcessed("legitimate")
	m.ObserveFailure()
	m.ObserveGeneration(300 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.processed.WithLabelValues("spam")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.processed.WithLabelValues("legitimate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.generationDuration))
}

func TestMetricsDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveProcessed("spam")
	m.ObserveFailure()
	m.ObserveGeneration(time.Second)
}

func TestExporterServesMetrics(t *testing.T) {
	reg := NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.ObserveProcessed("spam")

	exp := NewExporter("127.0.0.1:0", reg, zap.NewNop())
	require.NoError(t, exp.Start())
	t.Cleanup(func() { _ = exp.Stop(context.Background()) })

	resp, err := http.Get("http://" + exp.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "email_assistant_emails_processed_total")
}

type echoClient struct{}

func (echoClient) Generate(_ context.Context, prompt string) (string, error) { return prompt, nil }

func TestInstrumentClient(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	client := InstrumentClient(echoClient{}, m)
	out, err := client.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, 1, testutil.CollectAndCount(m.generationDuration))

	assert.Equal(t, echoClient{}, InstrumentClient(echoClient{}, nil))
}
