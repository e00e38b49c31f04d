package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/mcp"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

func connect(t *testing.T, deps mcp.ServerDeps) *mcpsdk.ClientSession {
	t.Helper()

	srv := mcp.NewServer(deps)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func textOf(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "want TextContent, got %T", result.Content[0])

	return text.Text
}

func TestServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{"insert_import", "list_imports"}, srv.ListToolNames())
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{"insert_import", "list_imports"}, names)
}

func TestInsertImport_ExtendsExisting(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := callTool(t, session, "insert_import", map[string]any{
		"code":   "import { Bar } from './foo';\n",
		"symbol": "Foo",
		"module": "./foo",
	})
	require.False(t, result.IsError, textOf(t, result))

	var payload mcp.InsertImportResult

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, "import { Bar, Foo } from './foo';\n", payload.Code)
	assert.Equal(t, change.KindInsert, payload.Change.Kind)
	assert.Equal(t, 12, payload.Change.Pos)
	assert.Equal(t, "input.ts", payload.Change.Path)
}

func TestInsertImport_NoopAndFileName(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	code := "import React from 'react';\nexport const App = () => <div />;\n"

	result := callTool(t, session, "insert_import", map[string]any{
		"code":      code,
		"file_name": "App.jsx",
		"symbol":    "React",
		"module":    "react",
		"default":   true,
	})
	require.False(t, result.IsError, textOf(t, result))

	var payload mcp.InsertImportResult

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, code, payload.Code)
	assert.Equal(t, change.KindNoop, payload.Change.Kind)
}

func TestInsertImport_ValidationErrors(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	tests := []struct {
		name string
		args map[string]any
		want error
	}{
		{
			name: "code_too_large",
			args: map[string]any{"code": strings.Repeat("x", mcp.MaxCodeInputBytes+1), "symbol": "A", "module": "m"},
			want: mcp.ErrCodeTooLarge,
		},
		{name: "empty_symbol", args: map[string]any{"code": "x;", "symbol": "", "module": "m"}, want: mcp.ErrEmptySymbol},
		{name: "empty_module", args: map[string]any{"code": "x;", "symbol": "A", "module": ""}, want: mcp.ErrEmptyModule},
		{
			name: "unsupported_language",
			args: map[string]any{"code": "x;", "symbol": "A", "module": "m", "language": "python"},
			want: mcp.ErrUnsupportedLanguage,
		},
	}

	for _, tt := range tests {
		result := callTool(t, session, "insert_import", tt.args)
		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, textOf(t, result), tt.want.Error(), tt.name)
	}
}

func TestInsertImport_EmptyCode(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := callTool(t, session, "insert_import", map[string]any{
		"code":   "",
		"symbol": "Foo",
		"module": "./foo",
	})
	require.False(t, result.IsError, textOf(t, result))

	var payload mcp.InsertImportResult

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, change.KindInsert, payload.Change.Kind)
	assert.Equal(t, 0, payload.Change.Pos)
	assert.Equal(t, "import { Foo } from './foo';\n", payload.Change.Text)
	assert.Equal(t, "import { Foo } from './foo';\n", payload.Code)
}

func TestListImports_EmptyCode(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := callTool(t, session, "list_imports", map[string]any{"code": ""})
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), mcp.ErrEmptyCode.Error())
}

func TestInsertImport_MalformedImport(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := callTool(t, session, "insert_import", map[string]any{
		"code":   "import './foo';\n",
		"symbol": "Foo",
		"module": "./foo",
	})
	assert.True(t, result.IsError)
}

func TestListImports(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := callTool(t, session, "list_imports", map[string]any{
		"code":     "import a, { b as c } from 'x';\nimport * as y from 'y';\n",
		"language": "ts",
	})
	require.False(t, result.IsError, textOf(t, result))

	var infos []tsast.ImportInfo

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "x", infos[0].Module)
	assert.Equal(t, "a", infos[0].Default)
	assert.Equal(t, []string{"b as c"}, infos[0].Named)
	assert.Equal(t, "y", infos[1].Namespace)
}

func TestServer_TracingAndMetrics(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	edits, err := observability.NewEditMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.ServerDeps{Tracer: tp.Tracer("test"), Metrics: red, Edits: edits})

	result := callTool(t, session, "insert_import", map[string]any{
		"code":   "const a = 1;\n",
		"symbol": "Foo",
		"module": "./foo",
	})
	require.False(t, result.IsError)

	// The sampled span appends its trace id.
	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, last.Text, "trace_id=")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mcp.insert_import", spans[0].Name())

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]bool)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}

	assert.True(t, names["tsedit.requests.total"])
	assert.True(t, names["tsedit.imports.total"])
}
