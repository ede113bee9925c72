package config

import (
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/shell"

	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

// FileName is the name of the user configuration file
const FileName = "config.toml"

// Config describes all tool-wide configuration options. Package specific
// settings live in each package's cpm.toml instead.
type Config struct {
	Compiler string `default:"gcc" env:"COMPILER" toml:"compiler" usage:"GCC-compatible compiler driver used to compile and link"`
	CFlags   string `env:"CFLAGS" toml:"cflags" usage:"Extra compiler flags appended to every compile command (shell syntax)"`
	LDFlags  string `env:"LDFLAGS" toml:"ldflags" usage:"Extra linker flags appended to every link command (shell syntax)"`
	Launcher string `env:"LAUNCHER" toml:"launcher" usage:"Command prefixed to every compile command, e.g. ccache (shell syntax)"`
	Progress bool   `default:"true" env:"PROGRESS" toml:"progress" usage:"Show a progress bar while compiling"`
	Log      struct {
		Level string `default:"info" env:"LEVEL" toml:"level"`
		JSON  bool   `default:"false" env:"JSON" toml:"json" usage:"Output JSONND instead of pretty console messages"`
	} `toml:"log"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// DefaultFiles returns the config files searched when --config isn't passed
func DefaultFiles() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}

	return []string{filepath.Join(dir, "cpm", FileName)}
}

// Loader initializes an empty config object and returns a new Loader for
// this object. Flags are handled by the CLI so aconfig only reads defaults,
// files and CPM_* environment variables.
func Loader(files ...string) (*Config, *aconfig.Loader) {
	if len(files) == 0 {
		files = DefaultFiles()
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "CPM",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads and validates the configuration
func Load(files ...string) (*Config, error) {
	cfg, loader := Loader(files...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.Compiler == "" {
		return eris.New("Invalid value for compiler: can't be empty")
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return eris.Errorf("Invalid value for log.level: %s", cfg.Log.Level)
	}

	if _, err := shell.Fields(cfg.CFlags, nil); err != nil {
		return eris.Wrapf(err, "Invalid value for cflags")
	}

	if _, err := shell.Fields(cfg.LDFlags, nil); err != nil {
		return eris.Wrapf(err, "Invalid value for ldflags")
	}

	if _, err := shell.Fields(cfg.Launcher, nil); err != nil {
		return eris.Wrapf(err, "Invalid value for launcher")
	}

	return nil
}

// ParseLogLevel converts a level name to a zerolog.Level
func ParseLogLevel(level string) (zerolog.Level, error) {
	lvl, ok := logLevels[level]
	if !ok {
		return zerolog.InfoLevel, eris.Errorf("unknown log level %s", level)
	}
	return lvl, nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// Toolchain builds the compiler binding described by this config
func (cfg *Config) Toolchain() (*toolchain.GCC, error) {
	cflags, err := shell.Fields(cfg.CFlags, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse cflags")
	}

	ldflags, err := shell.Fields(cfg.LDFlags, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse ldflags")
	}

	launcher, err := shell.Fields(cfg.Launcher, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse launcher")
	}

	return &toolchain.GCC{
		Path:              cfg.Compiler,
		ExtraCompileFlags: cflags,
		ExtraLinkFlags:    ldflags,
		Launcher:          launcher,
	}, nil
}
