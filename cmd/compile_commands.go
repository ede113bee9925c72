package cmd

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/compiledb"
	"github.com/coffee-is-power/c-project-manager/pkg/workspace"
)

var compileCommandsCmd = &cobra.Command{
	Use:   "compile-commands",
	Short: "Writes a compile_commands.json for the workspace",
	Long:  `Generates a compilation database covering every package of the workspace. Nothing is compiled.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		root, err := workspace.FindRoot(workDir)
		if err != nil {
			return err
		}

		if output == "" {
			output = filepath.Join(root, compiledb.FileName)
		} else if !filepath.IsAbs(output) {
			output = filepath.Join(workDir, output)
		}

		return writeCompileCommands(root, output)
	},
}

var mergeCompileCommandsCmd = &cobra.Command{
	Use:   "merge <output file> <input files...>",
	Short: "Merges several compile_commands.json files. Assumes that only absolute paths are used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return eris.Errorf("Expected at least 2 arguments but got %d!", len(args))
		}

		return compiledb.Merge(args[0], args[1:]...)
	},
}

func writeCompileCommands(root, output string) error {
	tc, err := cfg.Toolchain()
	if err != nil {
		return err
	}

	report, err := workspace.Open(ctx, root, builder.WithToolchain(tc))
	if err != nil {
		return err
	}

	entries := make([]compiledb.Entry, 0)
	for _, item := range report.Results {
		if item.Builder == nil {
			logger.Warn().Err(item.Err).Str("path", item.Path).Msgf("skipping %s", item.Name())
			continue
		}

		steps, err := item.Builder.CompileSteps()
		if err != nil {
			return err
		}

		entries = append(entries, compiledb.FromSteps(steps)...)
	}

	printTask("Writing " + output)
	return compiledb.Write(output, entries)
}

func init() {
	compileCommandsCmd.Flags().StringP("output", "o", "", "output file (defaults to compile_commands.json in the workspace root)")
	compileCommandsCmd.AddCommand(mergeCompileCommandsCmd)
	rootCmd.AddCommand(compileCommandsCmd)
}
