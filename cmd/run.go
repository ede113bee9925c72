package cmd

import (
	"errors"
	"os"
	"os/exec"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [-- args...]",
	Short: "Builds the workspace and runs an executable package",
	Long: `Builds every package of the workspace and launches the selected executable with the given arguments.
Without --package the workspace has to contain exactly one executable package.
The exit code of the program is passed through.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("package")
		if err != nil {
			return err
		}

		report, err := buildWorkspace(cmd)
		if err != nil {
			return err
		}

		for _, item := range report.Failed() {
			printError(item.Name())
		}

		target, err := report.RunTarget(name)
		if err != nil {
			return err
		}

		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		output := target.Builder.OutputPath()
		printTask("Running " + output)
		if dryRun {
			return nil
		}

		proc := exec.CommandContext(ctx, output, args...)
		proc.Dir = workDir
		proc.Stdin = os.Stdin
		proc.Stdout = os.Stdout
		proc.Stderr = os.Stderr

		err = proc.Run()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExitCodeError{Code: exitErr.ExitCode()}
			}
			return eris.Wrapf(err, "failed to run %s", output)
		}

		return nil
	},
}

func init() {
	addBuildFlags(runCmd.Flags())
	runCmd.Flags().StringP("package", "p", "", "name of the executable package to run")
	rootCmd.AddCommand(runCmd)
}
