package cmd

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/workspace"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds every package of the current workspace",
	Long: `Compiles all stale source files of every package in the workspace and links the results.
A failing package doesn't stop the remaining ones. The exit code is non-zero if any package failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := buildWorkspace(cmd)
		if err != nil {
			return err
		}

		reportPath, err := cmd.Flags().GetString("report")
		if err != nil {
			return err
		}

		if reportPath != "" {
			err = report.WriteYAML(reportPath)
			if err != nil {
				return err
			}
		}

		return summarize(report)
	},
}

func buildOptions(cmd *cobra.Command) ([]builder.Option, error) {
	flags := cmd.Flags()
	force, err := flags.GetBool("force")
	if err != nil {
		return nil, err
	}

	dryRun, err := flags.GetBool("dry")
	if err != nil {
		return nil, err
	}

	tc, err := cfg.Toolchain()
	if err != nil {
		return nil, err
	}

	opts := []builder.Option{
		builder.WithToolchain(tc),
		builder.WithForce(force),
		builder.WithDryRun(dryRun),
		builder.WithExecutor(&builder.ProcessExecutor{Stdout: os.Stdout}),
	}

	if cfg.Progress && !cfg.Log.JSON && !dryRun {
		opts = append(opts, builder.WithProgress(newProgress()))
	}

	return opts, nil
}

// newProgress returns a callback which renders one progress bar per package
func newProgress() builder.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(source string, index, total int) {
		if index == 0 {
			bar = getProgressBar(total, "compiling")
		}

		bar.Describe(filepath.Base(source))
		_ = bar.Set(index + 1)
		if index+1 == total {
			_ = bar.Finish()
		}
	}
}

func getProgressBar(length int, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" || !isatty.IsTerminal(os.Stderr.Fd()) {
		return progressbar.NewOptions(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(length,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func buildWorkspace(cmd *cobra.Command) (*workspace.Report, error) {
	root, err := workspace.FindRoot(workDir)
	if err != nil {
		return nil, err
	}

	opts, err := buildOptions(cmd)
	if err != nil {
		return nil, err
	}

	return workspace.Build(ctx, root, opts...)
}

func summarize(report *workspace.Report) error {
	printTask("Summary")
	for _, item := range report.Results {
		if item.OK() {
			printSubtask(item.Name())
		} else {
			printError(item.Name())
		}
	}

	failed := len(report.Failed())
	if failed > 0 {
		return eris.Errorf("%d of %d packages failed to build", failed, len(report.Results))
	}

	return nil
}

func addBuildFlags(flags *pflag.FlagSet) {
	flags.BoolP("force", "f", false, "force build; recompile every file even if it's up to date")
	flags.BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
}

func init() {
	addBuildFlags(buildCmd.Flags())
	buildCmd.Flags().String("report", "", "write a YAML build report to this file")
	rootCmd.AddCommand(buildCmd)
}
