package builder_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

func writeWithTime(t *testing.T, path string, ts time.Time) {
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func TestNeedsRebuild(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.c")
	output := filepath.Join(dir, "out.o")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	// missing output
	writeWithTime(t, input, base)
	require.True(t, builder.NeedsRebuild(input, output))

	// output newer than input
	writeWithTime(t, output, base.Add(time.Minute))
	require.False(t, builder.NeedsRebuild(input, output))

	// same timestamp is not stale
	require.NoError(t, os.Chtimes(output, base, base))
	require.False(t, builder.NeedsRebuild(input, output))

	// output older than input
	require.NoError(t, os.Chtimes(output, base.Add(-time.Minute), base.Add(-time.Minute)))
	require.True(t, builder.NeedsRebuild(input, output))

	// missing input fails open
	require.NoError(t, os.Chtimes(output, base.Add(time.Minute), base.Add(time.Minute)))
	require.True(t, builder.NeedsRebuild(filepath.Join(dir, "missing.c"), output))
}

func TestProcessExecutor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	e := &builder.ProcessExecutor{}

	result, err := e.Run(context.Background(), toolchain.Invocation{
		Program: sh,
		Args:    []string{"-c", "echo broken >&2; exit 3"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.Equal(t, "broken\n", result.Stderr)

	dir := t.TempDir()
	result, err = e.Run(context.Background(), toolchain.Invocation{
		Program: sh,
		Args:    []string{"-c", "touch out"},
		Dir:     dir,
	})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.FileExists(t, filepath.Join(dir, "out"))

	_, err = e.Run(context.Background(), toolchain.Invocation{Program: filepath.Join(dir, "does-not-exist")})
	require.Error(t, err)
}
