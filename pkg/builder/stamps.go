package builder

import (
	"encoding/gob"
	"os"
)

const stampsFile = ".cpm-stamps"

// commandStamps maps object paths (relative to the object dir) to the
// command line that produced them. An object whose command line changed is
// rebuilt even if it's newer than its source.
type commandStamps map[string]string

// readStamps never fails; a missing or corrupt file just means every object
// gets recompiled once.
func readStamps(file string) commandStamps {
	handle, err := os.Open(file)
	if err != nil {
		return commandStamps{}
	}
	defer handle.Close()

	var stamps commandStamps
	err = gob.NewDecoder(handle).Decode(&stamps)
	if err != nil || stamps == nil {
		return commandStamps{}
	}

	return stamps
}

func writeStamps(file string, stamps commandStamps) error {
	handle, err := os.Create(file)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(handle).Encode(stamps)
	if err != nil {
		handle.Close()
		return err
	}

	return handle.Close()
}
