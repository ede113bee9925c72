package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coffee-is-power/c-project-manager/pkg/workspace"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuilds the workspace whenever a file changes",
	Long:  `Builds the workspace once and then again every time a manifest, source or header file changes. Stop with Ctrl+C.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, err := cmd.Flags().GetDuration("debounce")
		if err != nil {
			return err
		}

		root, err := workspace.FindRoot(workDir)
		if err != nil {
			return err
		}

		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}

		printTask("Watching " + root)
		return workspace.Watch(ctx, root, debounce, func(report *workspace.Report, err error) {
			if err != nil {
				logger.Error().Err(err).Msg("build failed")
				return
			}

			// failures are already logged and the watcher keeps going
			_ = summarize(report)
		}, opts...)
	},
}

func init() {
	addBuildFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("debounce", workspace.DefaultDebounce, "wait this long after the last change before rebuilding")
	rootCmd.AddCommand(watchCmd)
}
