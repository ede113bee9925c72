package builder

import "os"

// NeedsRebuild reports whether output is older than input.
//
// If the metadata of either file can't be read (missing file, permission
// problem, ...) it always returns true.
func NeedsRebuild(input, output string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return true
	}

	inInfo, err := os.Stat(input)
	if err != nil {
		return true
	}

	return outInfo.ModTime().Before(inInfo.ModTime())
}
