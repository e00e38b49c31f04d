package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/tsedit/pkg/workspace"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{
			name:   "identical",
			before: "a\n",
			after:  "a\n",
			want:   "",
		},
		{
			name:   "insert_line",
			before: "a\nb\n",
			after:  "a\nX\nb\n",
			want:   "--- a/f.ts\n+++ b/f.ts\n@@ -1,2 +1,3 @@\n a\n+X\n b\n",
		},
		{
			name:   "empty_file",
			before: "",
			after:  "x\n",
			want:   "--- a/f.ts\n+++ b/f.ts\n@@ -1 +1 @@\n+x\n",
		},
		{
			name:   "replace_line",
			before: "import { A } from './a';\n",
			after:  "import { A, B } from './a';\n",
			want:   "--- a/f.ts\n+++ b/f.ts\n@@ -1 +1 @@\n-import { A } from './a';\n+import { A, B } from './a';\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, workspace.UnifiedDiff("f.ts", tt.before, tt.after))
		})
	}
}

func TestUnifiedDiff_SeparateHunks(t *testing.T) {
	t.Parallel()

	before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"
	after := "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n"

	want := "--- a/f.ts\n+++ b/f.ts\n" +
		"@@ -1,3 +1,4 @@\n+0\n 1\n 2\n 3\n" +
		"@@ -8,3 +9,4 @@\n 8\n 9\n 10\n+11\n"

	assert.Equal(t, want, workspace.UnifiedDiff("f.ts", before, after))
}

func TestUnifiedDiff_AbsolutePath(t *testing.T) {
	t.Parallel()

	got := workspace.UnifiedDiff("/proj/src/app.ts", "a\n", "a\nb\n")

	assert.Equal(t, "--- a/proj/src/app.ts\n+++ b/proj/src/app.ts\n@@ -1 +1,2 @@\n a\n+b\n", got)
}
