package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/imports"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

// Tool names.
const (
	ToolNameInsertImport = "insert_import"
	ToolNameListImports  = "list_imports"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MiB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	ErrEmptyCode           = errors.New("code parameter is required and must not be empty")
	ErrCodeTooLarge        = errors.New("code input exceeds maximum size")
	ErrEmptySymbol         = errors.New("symbol parameter is required and must not be empty")
	ErrEmptyModule         = errors.New("module parameter is required and must not be empty")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// InsertImportInput is the input schema for the insert_import tool.
type InsertImportInput struct {
	Code     string `json:"code"               jsonschema:"TypeScript or JavaScript source to edit"`
	Language string `json:"language,omitempty" jsonschema:"typescript (default), tsx or javascript"`
	FileName string `json:"file_name,omitempty" jsonschema:"file name used in the change; its extension selects the language when language is empty"`
	Symbol   string `json:"symbol"             jsonschema:"identifier to import"`
	Module   string `json:"module"             jsonschema:"module specifier, compared verbatim with existing imports"`
	Default  bool   `json:"default,omitempty"  jsonschema:"import the symbol as the default export when a new statement is added"`
}

// ListImportsInput is the input schema for the list_imports tool.
type ListImportsInput struct {
	Code     string `json:"code"               jsonschema:"TypeScript or JavaScript source"`
	Language string `json:"language,omitempty" jsonschema:"typescript (default), tsx or javascript"`
}

// InsertImportResult is the payload of a successful insert_import call.
type InsertImportResult struct {
	Change change.Descriptor `json:"change"`
	Code   string            `json:"code"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// checkCodeSize bounds inline code. Empty code is a valid empty file.
func checkCodeSize(code string) error {
	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

// resolveLanguage picks the grammar from language, then from fileName's
// extension, then defaults to TypeScript.
func resolveLanguage(language, fileName, code string) (string, error) {
	if language != "" {
		lang, err := tsast.NormalizeLanguage(language)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
		}

		return lang, nil
	}

	if fileName != "" {
		lang, err := tsast.DetectLanguage(fileName, []byte(code))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, fileName)
		}

		return lang, nil
	}

	return tsast.LangTypeScript, nil
}

func syntheticFilename(lang string) string {
	switch lang {
	case tsast.LangTSX:
		return "input.tsx"
	case tsast.LangJavaScript:
		return "input.js"
	default:
		return "input.ts"
	}
}

func (s *Server) handleInsertImport(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input InsertImportInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := checkCodeSize(input.Code); err != nil {
		return errorResult(err)
	}

	if input.Symbol == "" {
		return errorResult(ErrEmptySymbol)
	}

	if input.Module == "" {
		return errorResult(ErrEmptyModule)
	}

	lang, err := resolveLanguage(input.Language, input.FileName, input.Code)
	if err != nil {
		return errorResult(err)
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = syntheticFilename(lang)
	}

	sf, err := s.parser.ParseLanguage(ctx, lang, fileName, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	ch, err := imports.InsertImport(sf, fileName, input.Symbol, input.Module, input.Default)
	if err != nil {
		s.recordImport(ctx, observability.OutcomeError)

		return errorResult(err)
	}

	edited, err := change.ApplyToText(input.Code, ch)
	if err != nil {
		s.recordImport(ctx, observability.OutcomeError)

		return errorResult(err)
	}

	outcome := observability.OutcomeInserted
	if ch.IsNoop() {
		outcome = observability.OutcomeNoop
	}

	s.recordImport(ctx, outcome)
	s.logger.DebugContext(ctx, "insert_import",
		slog.String("symbol", input.Symbol),
		slog.String("module", input.Module),
		slog.String("outcome", outcome),
	)

	return jsonResult(InsertImportResult{Change: change.Describe(ch), Code: edited})
}

func (s *Server) handleListImports(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ListImportsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Code == "" {
		return errorResult(ErrEmptyCode)
	}

	if err := checkCodeSize(input.Code); err != nil {
		return errorResult(err)
	}

	lang, err := resolveLanguage(input.Language, "", input.Code)
	if err != nil {
		return errorResult(err)
	}

	sf, err := s.parser.ParseLanguage(ctx, lang, syntheticFilename(lang), []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(sf.Imports())
}

func (s *Server) recordImport(ctx context.Context, outcome string) {
	if s.edits != nil {
		s.edits.RecordImport(ctx, outcome)
	}
}
