package config

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultMaxSize   = "1 MiB"
	DefaultCacheSize = "64 MiB"
)

// DefaultInclude selects every TypeScript and JavaScript source.
var DefaultInclude = []string{
	"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
	"**/*.mjs", "**/*.cjs", "**/*.mts", "**/*.cts",
}

// DefaultExclude skips installed packages and declaration files.
var DefaultExclude = []string{"**/node_modules/**", "**/*.d.ts"}
