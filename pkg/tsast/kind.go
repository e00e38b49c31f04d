package tsast

// Kind classifies a syntax node independently of the grammar that produced it.
type Kind int

// Node kinds. Unknown covers every tree-sitter type without a dedicated kind;
// the raw type is still available in Node.Type.
const (
	KindUnknown Kind = iota
	KindSourceFile
	KindImportDeclaration
	KindImportEqualsDeclaration
	KindImportClause
	KindNamedImports
	KindNamespaceImport
	KindImportSpecifier
	KindStringLiteral
	KindIdentifier
	KindAsteriskToken
	KindOpenBraceToken
	KindCloseBraceToken
	KindCommaToken
	KindSemicolonToken
	KindImportKeyword
	KindFromKeyword
	KindAsKeyword
	KindExpressionStatement
	KindComment
	KindError
)

var kindNames = map[Kind]string{
	KindUnknown:                 "Unknown",
	KindSourceFile:              "SourceFile",
	KindImportDeclaration:       "ImportDeclaration",
	KindImportEqualsDeclaration: "ImportEqualsDeclaration",
	KindImportClause:            "ImportClause",
	KindNamedImports:            "NamedImports",
	KindNamespaceImport:         "NamespaceImport",
	KindImportSpecifier:         "ImportSpecifier",
	KindStringLiteral:           "StringLiteral",
	KindIdentifier:              "Identifier",
	KindAsteriskToken:           "AsteriskToken",
	KindOpenBraceToken:          "OpenBraceToken",
	KindCloseBraceToken:         "CloseBraceToken",
	KindCommaToken:              "CommaToken",
	KindSemicolonToken:          "SemicolonToken",
	KindImportKeyword:           "ImportKeyword",
	KindFromKeyword:             "FromKeyword",
	KindAsKeyword:               "AsKeyword",
	KindExpressionStatement:     "ExpressionStatement",
	KindComment:                 "Comment",
	KindError:                   "Error",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "Unknown"
}

// typeKinds maps tree-sitter node types shared by the typescript, tsx and
// javascript grammars to kinds. import_statement is resolved separately
// because the require form is a different declaration.
var typeKinds = map[string]Kind{
	"program":                               KindSourceFile,
	"import_clause":                         KindImportClause,
	"named_imports":                         KindNamedImports,
	"namespace_import":                      KindNamespaceImport,
	"import_specifier":                      KindImportSpecifier,
	"string":                                KindStringLiteral,
	"identifier":                            KindIdentifier,
	"type_identifier":                       KindIdentifier,
	"property_identifier":                   KindIdentifier,
	"shorthand_property_identifier":         KindIdentifier,
	"shorthand_property_identifier_pattern": KindIdentifier,
	"*":                                     KindAsteriskToken,
	"{":                                     KindOpenBraceToken,
	"}":                                     KindCloseBraceToken,
	",":                                     KindCommaToken,
	";":                                     KindSemicolonToken,
	"import":                                KindImportKeyword,
	"from":                                  KindFromKeyword,
	"as":                                    KindAsKeyword,
	"expression_statement":                  KindExpressionStatement,
	"comment":                               KindComment,
	"html_comment":                          KindComment,
	"hash_bang_line":                        KindComment,
	"ERROR":                                 KindError,
}

// isTrivia reports whether nodes of this kind are skipped when computing
// full-start positions.
func (k Kind) isTrivia() bool {
	return k == KindComment
}
