package replay

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/wyfcoding/segtree/config"
	"github.com/wyfcoding/segtree/logging"
	"github.com/wyfcoding/segtree/metrics"
	"github.com/wyfcoding/segtree/tracing"
)

func quietLogger(buf *bytes.Buffer) *logging.Logger {
	return logging.NewFromConfig(logging.Config{Service: "segreplay", Module: "replay-test", Level: "info", Output: buf})
}

func TestRunner_Testdata(t *testing.T) {
	scenarios, err := LoadFiles("testdata")
	require.NoError(t, err)

	var logs bytes.Buffer
	m := metrics.NewMetrics("segtree")
	report, err := NewRunner(Options{Parallelism: 3}, quietLogger(&logs), m).Run(context.Background(), scenarios)
	require.NoError(t, err)

	for _, res := range report.Results {
		assert.Equal(t, StatusPass, res.Status(), "%s: %v", res.Name, res.Cause())
		assert.Positive(t, res.Steps)
	}
	assert.True(t, report.OK())
	assert.Equal(t, len(scenarios), report.Count(StatusPass))

	assert.InDelta(t, 2, testutil.ToFloat64(m.ScenariosTotal.WithLabelValues(VariantLazy, StatusPass)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScenariosTotal.WithLabelValues(VariantBeats, StatusPass)), 0)
	assert.Positive(t, testutil.ToFloat64(m.PersistentNodes.WithLabelValues(VariantPersistentPoint, "price-history")))
	assert.Contains(t, logs.String(), `"msg":"scenario finished"`)
}

func TestRunner_Mismatch(t *testing.T) {
	scenarios, err := LoadFiles(writeScenario(t, `
name: wrong-sum
variant: lazy
preset: add_sum
values: [1, 2, 3]
steps:
  - {op: query, left: 0, right: 3, expect: 7}
  - {op: get, index: 0, expect: 1}
  - {op: get, index: 3}
  - {op: get, index: 0, expect_error: 400101}
  - {op: data, expect_data: [1, 2]}
`))
	require.NoError(t, err)

	var logs bytes.Buffer
	report, err := NewRunner(Options{}, quietLogger(&logs), nil).Run(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, StatusFail, res.Status())
	assert.Equal(t, 5, res.Steps)
	require.Len(t, res.Mismatches, 4)
	for _, m := range res.Mismatches {
		assert.ErrorIs(t, m, ErrExpectationMismatch)
	}
	assert.Equal(t, "want 7, got 6", detailOf(res.Mismatches[0]))
	assert.Contains(t, logs.String(), `"msg":"step mismatch"`)
	assert.False(t, report.OK())
}

func TestRunner_InvalidScenarioIsError(t *testing.T) {
	report, err := NewRunner(Options{}, quietLogger(&bytes.Buffer{}), nil).Run(context.Background(), []Scenario{
		{Name: "bad", Variant: VariantLazy, Preset: "nope", Values: []int64{1}},
	})
	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, StatusError, res.Status())
	assert.ErrorIs(t, res.Err, ErrUnknownPreset)
}

func TestRunner_FailFast(t *testing.T) {
	bad := Scenario{Name: "bad", Variant: VariantLazy, Preset: "nope", Values: []int64{1}}
	scenarios := []Scenario{bad}
	for range 20 {
		scenarios = append(scenarios, Scenario{Name: "ok", Variant: VariantLazy, Preset: "add_sum", Values: []int64{1}})
	}

	report, err := NewRunner(Options{Parallelism: 1, FailFast: true}, quietLogger(&bytes.Buffer{}), nil).
		Run(context.Background(), scenarios)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpectationMismatch)
	assert.Len(t, report.Results, len(scenarios))
	assert.Equal(t, StatusError, report.Results[0].Status())
	assert.Positive(t, report.Count(StatusSkipped))
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(Options{}, quietLogger(&bytes.Buffer{}), nil).Run(ctx, []Scenario{
		{Name: "never", Variant: VariantLazy, Preset: "add_sum", Values: []int64{1}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusSkipped, report.Results[0].Status())
}

func TestRunner_RecoversPanic(t *testing.T) {
	r := NewRunner(Options{}, quietLogger(&bytes.Buffer{}), nil)

	err := r.recovered(context.Background(), &Scenario{Name: "p"}, "boom")
	assert.ErrorIs(t, err, ErrScenarioPanic)

	err = r.recovered(context.Background(), &Scenario{Name: "p"}, errors.New("plain"))
	assert.ErrorIs(t, err, ErrScenarioPanic)

	err = r.recovered(context.Background(), &Scenario{Name: "p"}, ErrUnknownPreset.Derive("typed"))
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestRunner_Spans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	shutdown, err := tracing.InitTracer(config.TracingConfig{Enabled: true, ServiceName: "segreplay-test", SampleRatio: 1}, exp)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	scenarios, err := LoadFiles("testdata/beats.yaml")
	require.NoError(t, err)

	var logs bytes.Buffer
	_, err = NewRunner(Options{}, quietLogger(&logs), nil).Run(context.Background(), scenarios)
	require.NoError(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "replay.scenario", spans[0].Name)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "chmin-chmax-add", attrs["replay.scenario"])
	assert.Equal(t, StatusPass, attrs["replay.result"])
	assert.Contains(t, logs.String(), spans[0].SpanContext.TraceID().String())
}

func TestReport_Render(t *testing.T) {
	report := &Report{Results: []Result{
		{Name: "a", Variant: VariantLazy, Steps: 2},
		{Name: "b", Variant: VariantBeats, Steps: 1, Mismatches: []error{mismatch(0, OpQuery, "want 1, got 2")}},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "want 1, got 2")
	assert.Contains(t, out, "1 passed, 1 failed, 0 errors")
	assert.Equal(t, 1, strings.Count(out, StatusFail+" "))
}
