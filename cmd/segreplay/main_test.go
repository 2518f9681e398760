package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestRunTestdata(t *testing.T) {
	out, err := execute(t, "run", "-p", "2", filepath.Join("..", "..", "replay", "testdata"))
	require.NoError(t, err)

	for _, name := range []string{"min-clamp", "add-sum", "snapshot-forks", "chmin-chmax-add", "prefix-budget", "price-history"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "6 passed, 0 failed, 0 errors")
}

func TestRunFailingScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: off-by-one
variant: point
preset: add_sum
values: [1, 2, 3]
steps:
  - {op: query, left: 0, right: 3, expect: 5}
`), 0o600))

	out, err := execute(t, "run", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errScenariosFailed)
	assert.Contains(t, out, "want 5, got 6")
}

func TestRunWritesTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "segtree.prom")
	cfgPath := filepath.Join(dir, "segreplay.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[metrics]
enabled = true
namespace = "segtree"
textfile = "`+filepath.ToSlash(textfile)+`"

[replay]
parallelism = 1
scenarios = ["`+filepath.ToSlash(filepath.Join("..", "..", "replay", "testdata", "beats.yaml"))+`"]
`), 0o600))

	_, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `segtree_scenarios_total{result="pass",variant="beats"} 1`)
	assert.Contains(t, string(data), "segtree_build_info")
}

func TestRunArgumentErrors(t *testing.T) {
	_, err := execute(t, "run", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs --config")

	_, err = execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files")
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)

	assert.Contains(t, out, "add_sum")
	assert.Contains(t, out, "chmax_min")
	assert.Contains(t, out, "chmin_chmax_add_sum")
	assert.Contains(t, out, "persistent_point")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "segreplay dev\n", out)
}
