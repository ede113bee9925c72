package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStamps(t *testing.T) {
	file := filepath.Join(t.TempDir(), stampsFile)

	require.Empty(t, readStamps(file))

	stamps := commandStamps{"a.o": "gcc a.c -c -o a.o"}
	require.NoError(t, writeStamps(file, stamps))
	require.Equal(t, stamps, readStamps(file))

	require.NoError(t, os.WriteFile(file, []byte("garbage"), 0o644))
	require.Empty(t, readStamps(file))
}
