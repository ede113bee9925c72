package cmd

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/workspace"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes build outputs",
	Long:  `Deletes the workspace's target folder. With --package only the outputs of that package are removed.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("package")
		if err != nil {
			return err
		}

		root, err := workspace.FindRoot(workDir)
		if err != nil {
			return err
		}

		return clean(root, name)
	},
}

func clean(root, name string) error {
	if name == "" {
		target := filepath.Join(root, builder.TargetFolder)
		printTask("Removing " + target)
		return removePath(target)
	}

	report, err := workspace.Open(ctx, root)
	if err != nil {
		return err
	}

	for _, item := range report.Results {
		if item.Builder == nil || item.Builder.Package().Name != name {
			continue
		}

		printTask("Cleaning " + item.Name())
		return item.Builder.Clean()
	}

	return eris.Errorf("no package named %s in this workspace", name)
}

func init() {
	cleanCmd.Flags().StringP("package", "p", "", "only remove the outputs of this package")
	rootCmd.AddCommand(cleanCmd)
}
