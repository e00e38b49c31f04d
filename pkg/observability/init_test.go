package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/tsedit/pkg/config"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
)

// telemetry builds the observability config tsedit derives from its own
// settings.
func telemetry(mode observability.AppMode, tel config.TelemetryConfig) observability.Config {
	cfg := config.Config{
		Log:       config.LogConfig{Level: config.DefaultLogLevel},
		Telemetry: tel,
	}

	return cfg.Observability(mode, "1.4.0")
}

func samplesRoot(t *testing.T, cfg observability.Config) bool {
	t.Helper()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(observability.SelectSampler(cfg)))
	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	_, span := tp.Tracer("tsedit-test").Start(context.Background(), "workspace.AddImports")
	defer span.End()

	return span.SpanContext().IsSampled()
}

func TestInit_Modes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mode        observability.AppMode
		tel         config.TelemetryConfig
		wantHandler bool
	}{
		{name: "cli_defaults", mode: observability.ModeCLI},
		{name: "mcp_without_scrape_address", mode: observability.ModeMCP},
		{
			name:        "mcp_with_prometheus",
			mode:        observability.ModeMCP,
			tel:         config.TelemetryConfig{PrometheusAddr: ":9464", Environment: "ci"},
			wantHandler: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			providers, err := observability.Init(telemetry(tt.mode, tt.tel))
			require.NoError(t, err)

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.NotNil(t, providers.Logger)
			assert.Equal(t, tt.wantHandler, providers.MetricsHandler != nil)

			_, span := providers.Tracer.Start(context.Background(), "cli.edit")
			span.End()

			require.NoError(t, providers.Shutdown(context.Background()))
			require.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestInit_PrometheusServesEditMetrics(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(telemetry(observability.ModeMCP, config.TelemetryConfig{PrometheusAddr: ":0"}))
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })
	require.NotNil(t, providers.MetricsHandler)

	metrics, err := observability.NewEditMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordImport(context.Background(), observability.OutcomeInserted)
	metrics.RecordFile(context.Background(), true, 0)

	srv := httptest.NewServer(providers.MetricsHandler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL) //nolint:noctx // test server
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tsedit_files_changed")
	assert.Contains(t, string(body), `outcome="inserted"`)
}

func TestBuildResource_FromSettings(t *testing.T) {
	t.Parallel()

	res, err := observability.BuildResource(telemetry(observability.ModeMCP, config.TelemetryConfig{Environment: "staging"}))
	require.NoError(t, err)

	got := map[string]string{}
	for _, attr := range res.Attributes() {
		got[string(attr.Key)] = attr.Value.Emit()
	}

	assert.Equal(t, "tsedit", got["service.name"])
	assert.Equal(t, "1.4.0", got["service.version"])
	assert.Equal(t, "staging", got["deployment.environment"])
	assert.Equal(t, "mcp", got["app.mode"])
}

func TestSelectSampler_FromSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tel  config.TelemetryConfig
		want bool
	}{
		{name: "default_samples_roots", want: true},
		{name: "full_ratio", tel: config.TelemetryConfig{SampleRatio: 1}, want: true},
		{name: "negligible_ratio", tel: config.TelemetryConfig{SampleRatio: 1e-15}, want: false},
		{name: "debug_trace_beats_ratio", tel: config.TelemetryConfig{SampleRatio: 1e-15, DebugTrace: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, samplesRoot(t, telemetry(observability.ModeCLI, tt.tel)))
		})
	}
}

// OTEL_TRACES_SAMPLER takes precedence over telemetry.sample_ratio but not
// over telemetry.debug_trace. Subtests share the process environment, so
// they run sequentially.
func TestSelectSampler_EnvironmentOverride(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		tel     config.TelemetryConfig
		want    bool
	}{
		{name: "always_off_beats_ratio", sampler: "always_off", tel: config.TelemetryConfig{SampleRatio: 1}, want: false},
		{name: "always_on", sampler: "always_on", tel: config.TelemetryConfig{SampleRatio: 1e-15}, want: true},
		{name: "parent_based_off_drops_roots", sampler: "parentbased_always_off", want: false},
		{name: "ratio_argument", sampler: "traceidratio", arg: "1.0", want: true},
		{name: "unparsable_ratio_samples_all", sampler: "parentbased_traceidratio", arg: "lots", want: true},
		{name: "unknown_sampler_defaults_on", sampler: "sometimes", want: true},
		{name: "debug_trace_beats_env", sampler: "always_off", tel: config.TelemetryConfig{DebugTrace: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER", tt.sampler)
			t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.arg)

			assert.Equal(t, tt.want, samplesRoot(t, telemetry(observability.ModeCLI, tt.tel)))
		})
	}
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{name: "empty", input: "", want: nil},
		{name: "team_header", input: "x-team=web", want: map[string]string{"x-team": "web"}},
		{name: "trimmed_pairs", input: " authorization = Bearer abc , x-team=web ", want: map[string]string{
			"authorization": "Bearer abc",
			"x-team":        "web",
		}},
		{name: "pair_without_value_dropped", input: "garbage", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.input))
		})
	}
}
