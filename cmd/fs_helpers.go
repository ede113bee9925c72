package cmd

import (
	"errors"
	"os"

	"github.com/rotisserie/eris"
)

// removePath deletes a file or folder tree. Missing paths are ignored.
func removePath(item string) error {
	_, err := os.Stat(item)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "could not stat %s", item)
	}

	err = os.RemoveAll(item)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "could not delete %s", item)
	}

	return nil
}
