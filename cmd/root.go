package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coffee-is-power/c-project-manager/pkg/buildlog"
	"github.com/coffee-is-power/c-project-manager/pkg/config"
)

// ExitCodeError ends the process with Code without printing anything
type ExitCodeError struct {
	Code int
}

var _ error = (*ExitCodeError)(nil)

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var (
	cfg     *config.Config
	workDir string
	logger  = newLogger(false)
	// ctx carries the configured logger; set by setup()
	ctx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   "cpm",
	Short: "A small build tool for C packages",
	Long: `cpm builds C packages described by a cpm.toml manifest.
Packages can be grouped into workspaces which are built together; all outputs end up
in the target folder next to the workspace manifest.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to the config file (defaults to the user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "one of debug, info, warn, error (overrides the config)")
	rootCmd.PersistentFlags().Bool("json", false, "print log messages as JSON lines")
	rootCmd.PersistentFlags().StringP("directory", "C", "", "run as if cpm was started in this directory")
}

func setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return err
	}

	var files []string
	if cfgPath != "" {
		files = append(files, cfgPath)
	}

	cfg, err = config.Load(files...)
	if err != nil {
		return err
	}

	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	if jsonOutput {
		cfg.Log.JSON = true
	}

	level := cfg.LogLevel()
	levelName, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	if levelName != "" {
		level, err = config.ParseLogLevel(levelName)
		if err != nil {
			return err
		}
	}

	logger = newLogger(cfg.Log.JSON).Level(level)
	if cmd.Context() != nil {
		ctx = cmd.Context()
	}
	ctx = buildlog.WithLogger(ctx, &logger)

	workDir, err = flags.GetString("directory")
	if err != nil {
		return err
	}
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return eris.Wrap(err, "failed to retrieve the current working directory")
		}
	}

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %s", workDir)
	}

	return nil
}

func newLogger(jsonOutput bool) zerolog.Logger {
	if jsonOutput {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return zerolog.New(NewConsoleWriter())
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := rootCmd.ExecuteContext(sigCtx)
	if err == nil {
		return 0
	}

	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	logger.Error().Err(err).Msg("command failed")
	return 1
}
