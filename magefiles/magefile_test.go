package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSetStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s2t.yaml"), []byte(`name: s2t
phrases:
  头发: 頭髮
characters:
  汉: 漢
  语: 語
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte("characters:\n  a: b\n"), 0o644))

	stats, err := ruleSetStats(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ruleSetStat{
		{name: "s2t", phrases: 1, characters: 2},
		{name: "custom", characters: 1},
	}, stats)

	none, err := ruleSetStats(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCountGoLines(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a_test.go"), []byte("package a\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "_skip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "_skip", "b.go"), []byte("package b\n"), 0o644))

	prod, tests, err := countGoLines(root)
	require.NoError(t, err)
	assert.Equal(t, 2, prod)
	assert.Equal(t, 1, tests)
}
