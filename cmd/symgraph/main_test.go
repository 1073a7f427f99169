package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symgraph/internal/config"
	"symgraph/internal/errors"
	"symgraph/internal/paths"
)

// newProject writes a config whose index is the shapes fixture and whose
// store lives in a temp directory. It returns the project root.
func newProject(t *testing.T, scipPath string) string {
	t.Helper()
	fixtures, err := filepath.Abs(filepath.Join("..", "..", "internal", "mcp", "testdata"))
	require.NoError(t, err)

	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ProjectDir = fixtures
	cfg.Index.ScipPath = scipPath
	if scipPath == "" {
		cfg.Index.ScipPath = filepath.Join(fixtures, "shapes.toml")
	}
	cfg.Index.StorePath = filepath.Join(root, "store", "index.db")
	require.NoError(t, cfg.Save(root))
	return root
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI against root and returns stdout.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	projectFlag, formatFlag, verbosity, quietFlag = "", string(FormatHuman), 0, false
	findFiles, findModule, findIgnoreCase, findAll = nil, "", false, false
	relationUSR, sourceContext, sourceFull, configForce = "", 0, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--project", root}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestFind(t *testing.T) {
	root := newProject(t, "")

	out, err := run(t, root, "find", "classes", "Circle")
	require.NoError(t, err)
	assert.Contains(t, out, "class Circle")
	assert.Contains(t, out, "inherits Shape")

	out, err = run(t, root, "find", "functions", "area", "--format", "json")
	require.NoError(t, err)
	var resp FindResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "area", resp.Results[0].Name)
	require.NotNil(t, resp.Results[0].Parent)
	assert.Equal(t, "Circle", resp.Results[0].Parent.Name)
}

func TestFind_Suggestions(t *testing.T) {
	root := newProject(t, "")

	out, err := run(t, root, "find", "classes", "Circel")
	require.NoError(t, err)
	assert.Contains(t, out, `No classes matching "Circel"`)
	assert.Contains(t, out, "Did you mean: Circle?")
}

func TestFind_InvalidPreset(t *testing.T) {
	root := newProject(t, "")

	_, err := run(t, root, "find", "widgets")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidPreset, errors.CodeOf(err))
	assert.Equal(t, 1, exitCode(err))
}

func TestRelations(t *testing.T) {
	root := newProject(t, "")

	out, err := run(t, root, "subclasses", "Shape")
	require.NoError(t, err)
	assert.Contains(t, out, "subclasses of protocol Shape (s:Shape):")
	assert.Contains(t, out, "  class Circle")

	out, err = run(t, root, "callers", "--usr", "s:Circle.radiusSquared", "--format", "json")
	require.NoError(t, err)
	var resp RelationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Targets, 1)
	require.Len(t, resp.Targets[0].Results, 1)
	assert.Equal(t, "area", resp.Targets[0].Results[0].Name)

	out, err = run(t, root, "ancestors", "area")
	require.NoError(t, err)
	assert.Contains(t, out, "class Circle")

	out, err = run(t, root, "extensions", "Circle")
	require.NoError(t, err)
	assert.Contains(t, out, "extension Circle")

	_, err = run(t, root, "inheritance", "Square")
	require.Error(t, err)
	assert.Equal(t, errors.SymbolNotFound, errors.CodeOf(err))
}

func TestSource(t *testing.T) {
	root := newProject(t, "")

	out, err := run(t, root, "source", "s:Circle", "--context", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "> 1 | class Circle: Shape {")
	assert.Contains(t, out, "  2 |     func radiusSquared()")

	_, err = run(t, root, "source", "s:Shape")
	require.Error(t, err)
	assert.Equal(t, errors.PathMissing, errors.CodeOf(err))
}

func TestIndexAndStatus(t *testing.T) {
	root := newProject(t, "")

	out, err := run(t, root, "index", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "symbols: 4")

	out, err = run(t, root, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Symbols:     4")
	assert.Contains(t, out, "shapes.toml")
}

func TestMissingIndex(t *testing.T) {
	root := newProject(t, filepath.Join(t.TempDir(), "missing.scip"))

	_, err := run(t, root, "find", "classes", "Circle")
	require.Error(t, err)
	assert.Equal(t, errors.IndexMissing, errors.CodeOf(err))
	assert.Equal(t, 2, exitCode(err))
}

func TestConfigInit(t *testing.T) {
	root := t.TempDir()

	out, err := run(t, root, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, paths.ConfigPath(root))
	_, err = os.Stat(paths.ConfigPath(root))
	require.NoError(t, err)

	_, err = run(t, root, "config", "init")
	assert.Error(t, err)
	_, err = run(t, root, "config", "init", "--force")
	assert.NoError(t, err)

	out, err = run(t, root, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"restrictToProject": true`)
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{"key": "value"}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "symgraph version")

	out, err = run(t, t.TempDir(), "version", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "symgraph"`)
}
