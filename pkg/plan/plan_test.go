package plan_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsedit/pkg/imports"
	"github.com/Sumatoshi-tech/tsedit/pkg/plan"
)

const yamlPlan = `
files: ["src/**/*.ts"]
exclude: ["**/*.spec.ts"]
imports:
  - symbol: Component
    module: "@angular/core"
  - symbol: React
    module: react
    default: true
`

const jsonPlan = `{
  "imports": [{"symbol": "Injectable", "module": "@angular/core"}]
}`

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	p, err := plan.Parse([]byte(yamlPlan))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.ts"}, p.Files)
	assert.Equal(t, []string{"**/*.spec.ts"}, p.Exclude)
	assert.Equal(t, []imports.Request{
		{Symbol: "Component", Module: "@angular/core"},
		{Symbol: "React", Module: "react", Default: true},
	}, p.Requests())

	assert.Equal(t, []string{"src/**/*.ts"}, p.IncludePatterns([]string{"**/*.js"}))
	assert.Equal(t, []string{"**/node_modules/**", "**/*.spec.ts"}, p.ExcludePatterns([]string{"**/node_modules/**"}))
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	p, err := plan.Parse([]byte(jsonPlan))
	require.NoError(t, err)

	assert.Empty(t, p.Files)
	assert.Equal(t, []string{"**/*.ts"}, p.IncludePatterns([]string{"**/*.ts"}))
	assert.Equal(t, []imports.Request{{Symbol: "Injectable", Module: "@angular/core"}}, p.Requests())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{name: "empty", input: "", contains: "Invalid type"},
		{name: "no_imports", input: "files: [a.ts]\n", contains: "imports"},
		{name: "empty_imports", input: "imports: []\n", contains: "imports"},
		{name: "missing_module", input: "imports:\n  - symbol: A\n", contains: "module"},
		{name: "bad_symbol", input: "imports:\n  - symbol: 1abc\n    module: m\n", contains: "symbol"},
		{name: "unknown_key", input: "imports:\n  - symbol: A\n    module: m\n    alias: B\n", contains: "alias"},
		{name: "not_yaml", input: "imports: [", contains: ""},
		{name: "bad_glob", input: "files: ['src/[a-']\nimports:\n  - symbol: A\n    module: m\n", contains: "bad glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := plan.Parse([]byte(tt.input))
			require.ErrorIs(t, err, plan.ErrInvalidPlan)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plans/add.yaml", []byte(yamlPlan), 0o644))

	p, err := plan.LoadFile(fs, "/plans/add.yaml")
	require.NoError(t, err)
	assert.Len(t, p.Imports, 2)

	_, err = plan.LoadFile(fs, "/plans/missing.yaml")
	require.Error(t, err)
}

func TestSchema_IsEmbedded(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(plan.Schema()), `"required": ["imports"]`)
}
