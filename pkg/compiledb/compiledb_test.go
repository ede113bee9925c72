package compiledb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

func TestWriteAndMerge(t *testing.T) {
	dir := t.TempDir()

	steps := []builder.CompileStep{{
		Source: "/pkg/src/main.c",
		Object: "/ws/target/objects/foo-1.0.0/main.o",
		Invocation: toolchain.Invocation{
			Program: "gcc",
			Args:    []string{"/pkg/src/main.c", "-c", "-o", "/ws/target/objects/foo-1.0.0/main.o"},
			Dir:     "/pkg",
		},
	}}

	first := filepath.Join(dir, "a.json")
	require.NoError(t, Write(first, FromSteps(steps)))

	second := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(second, []byte(`[{"directory": "/x", "command": "cc -c y.c", "file": "/x/y.c"}]`), 0o644))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, Write(empty, nil))

	out := filepath.Join(dir, FileName)
	require.NoError(t, Merge(out, first, empty, second))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var merged []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &merged))
	require.Len(t, merged, 2)
	require.Equal(t, "/pkg/src/main.c", merged[0]["file"])
	require.Equal(t, "/pkg", merged[0]["directory"])
	require.Equal(t, "cc -c y.c", merged[1]["command"])
}

func TestMerge_Errors(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, Merge(filepath.Join(dir, "out.json")))
	require.Error(t, Merge(filepath.Join(dir, "out.json"), filepath.Join(dir, "missing.json")))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	require.Error(t, Merge(filepath.Join(dir, "out.json"), bad))
}
