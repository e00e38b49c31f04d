package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/tsedit/pkg/config"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var record map[string]any

		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		records = append(records, record)
	}

	return records
}

func jsonLogger(buf *bytes.Buffer, mode observability.AppMode, env string) *slog.Logger {
	cfg := config.Config{
		Log:       config.LogConfig{Level: "debug", JSON: true},
		Telemetry: config.TelemetryConfig{Environment: env},
	}

	return observability.NewLogger(buf, cfg.Observability(mode, "0.3.1"))
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "tsedit", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.False(t, cfg.Prometheus)
}

func TestNewLogger_CarriesSpanOfEdit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := jsonLogger(&buf, observability.ModeCLI, "ci")

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	ctx, span := tp.Tracer("tsedit-test").Start(context.Background(), "workspace.AddImports")
	logger.InfoContext(ctx, "file edited", slog.String("file", "src/app.ts"))
	span.End()

	logger.InfoContext(context.Background(), "summary")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)

	edited := records[0]
	assert.Equal(t, span.SpanContext().TraceID().String(), edited["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), edited["span_id"])
	assert.Equal(t, "src/app.ts", edited["file"])
	assert.Equal(t, "tsedit", edited["service"])
	assert.Equal(t, "cli", edited["mode"])
	assert.Equal(t, "0.3.1", edited["version"])
	assert.Equal(t, "ci", edited["env"])

	summary := records[1]
	assert.NotContains(t, summary, "trace_id")
	assert.NotContains(t, summary, "span_id")
}

func TestNewLogger_MetadataStaysTopLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := jsonLogger(&buf, observability.ModeMCP, "")

	logger.With(slog.String("tool", "insert_import")).
		WithGroup("request").
		Info("handled", slog.String("symbol", "Foo"))

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "tsedit", record["service"])
	assert.Equal(t, "mcp", record["mode"])
	assert.Equal(t, "insert_import", record["tool"])
	assert.NotContains(t, record, "env")

	request, ok := record["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Foo", request["symbol"])
}

func TestNewLogger_LevelAndFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		log     config.LogConfig
		wantOut []string
		wantNot []string
	}{
		{
			name:    "json_warn_drops_info",
			log:     config.LogConfig{Level: "warn", JSON: true},
			wantOut: []string{`"msg":"kept"`, `"file":"a.ts"`, `"service":"tsedit"`},
			wantNot: []string{"dropped"},
		},
		{
			name:    "text_debug_keeps_all",
			log:     config.LogConfig{Level: "debug"},
			wantOut: []string{"msg=dropped", "msg=kept", "file=a.ts", "service=tsedit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			cfg := config.Config{Log: tt.log}
			logger := observability.NewLogger(&buf, cfg.Observability(observability.ModeCLI, ""))

			logger.Info("dropped")
			logger.Warn("kept", slog.String("file", "a.ts"))

			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}

			for _, unwanted := range tt.wantNot {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}
