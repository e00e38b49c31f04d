package tsast

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// Supported grammar names.
const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJavaScript = "javascript"
)

// ErrUnsupportedLanguage is returned for files no grammar can parse.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// languageFuncs maps grammar names to their tree-sitter GetLanguage functions.
var languageFuncs = map[string]func() unsafe.Pointer{
	LangJavaScript: javascript.GetLanguage,
	LangTSX:        tsx.GetLanguage,
	LangTypeScript: typescript.GetLanguage,
}

var languageCache sync.Map

// grammar returns the tree-sitter Language for the given name, or nil if not supported.
func grammar(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

var extensionLanguages = map[string]string{
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".jsx": LangJavaScript,
}

// enryLanguages maps linguist language names reported by enry to grammars.
var enryLanguages = map[string]string{
	"TypeScript": LangTypeScript,
	"TSX":        LangTSX,
	"JavaScript": LangJavaScript,
}

var languageAliases = map[string]string{
	"ts":         LangTypeScript,
	"typescript": LangTypeScript,
	"tsx":        LangTSX,
	"js":         LangJavaScript,
	"jsx":        LangJavaScript,
	"javascript": LangJavaScript,
	"node":       LangJavaScript,
}

// DetectLanguage picks a grammar for the file. Known extensions win; other
// files go through enry, which also looks at shebangs and content.
func DetectLanguage(fileName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang, nil
	}

	if lang, ok := enryLanguages[enry.GetLanguage(filepath.Base(fileName), content)]; ok {
		return lang, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, fileName)
}

// NormalizeLanguage resolves a user supplied language name or alias.
func NormalizeLanguage(name string) (string, error) {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lang, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

// IsSupported reports whether the file name has an extension with a grammar.
func IsSupported(fileName string) bool {
	_, ok := extensionLanguages[strings.ToLower(filepath.Ext(fileName))]

	return ok
}
