package main

import (
	"os"

	"github.com/coffee-is-power/c-project-manager/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
