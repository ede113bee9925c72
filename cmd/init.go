package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Creates a new executable package",
	Long: `Creates the folder (if necessary) and writes a cpm.toml together with a hello world program.
The folder name is used as the package name and has to be a valid snake_case identifier.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(workDir, dir)
		}

		return initPackage(dir)
	},
}

func initPackage(dir string) error {
	name := filepath.Base(dir)
	if err := manifest.ValidateName(name); err != nil {
		return err
	}

	manifestPath := manifest.Path(dir)
	_, err := os.Stat(manifestPath)
	if err == nil {
		return eris.Errorf("%s already exists", manifestPath)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "failed to check %s", manifestPath)
	}

	printTask("Creating package " + name)

	for _, folder := range []string{"src", "include"} {
		err = os.MkdirAll(filepath.Join(dir, folder), 0o770)
		if err != nil {
			return eris.Wrapf(err, "failed to create %s", filepath.Join(dir, folder))
		}
	}

	err = os.WriteFile(manifestPath, []byte(manifest.Template(name)), 0o660)
	if err != nil {
		return eris.Wrapf(err, "failed to write %s", manifestPath)
	}
	printSubtask(manifestPath)

	mainPath := filepath.Join(dir, "src", "main.c")
	_, err = os.Stat(mainPath)
	if errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(mainPath, []byte(manifest.MainTemplate), 0o660)
		if err != nil {
			return eris.Wrapf(err, "failed to write %s", mainPath)
		}
		printSubtask(mainPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
