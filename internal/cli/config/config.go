package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/datescan/pkg/report"
	"github.com/stackvity/datescan/pkg/scanner"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. DATESCAN_CONCURRENCY.
	EnvPrefix = "DATESCAN"
	// DefaultConfigName is the config file base name searched for when --config is not given.
	DefaultConfigName = "datescan"
	// DefaultOutput is the report file written when --output is not given. "-" means stdout.
	DefaultOutput = "results.txt"
	// StdoutOutput selects standard output as the report destination.
	StdoutOutput = "-"
)

// Config is the fully merged CLI configuration.
type Config struct {
	Inputs       []string `mapstructure:"inputs"`
	Output       string   `mapstructure:"output"`
	Verbose      bool     `mapstructure:"verbose"`
	OutputFormat string   `mapstructure:"outputFormat"`
	Color        bool     `mapstructure:"color"`
	Progress     bool     `mapstructure:"progress"`

	Scan scanner.Options `mapstructure:",squash"`

	Format         report.Format `mapstructure:"-"` // Parsed OutputFormat
	ConfigFilePath string        `mapstructure:"-"` // Path to the loaded config file (for reporting)
	ProfileName    string        `mapstructure:"-"` // Name of the profile used (for reporting)
}

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"file":             "inputs",
	"output":           "output",
	"verbose":          "verbose",
	"concurrency":      "concurrency",
	"queue-depth":      "queueDepth",
	"format":           "outputFormat",
	"ignore":           "ignore",
	"follow-symlinks":  "followSymlinks",
	"skip-vendored":    "skipVendored",
	"keep-duplicates":  "keepDuplicates",
	"default-encoding": "defaultEncoding",
	"pattern":          "pattern",
}

// DefineFlags registers every flag LoadAndValidate understands on flags.
func DefineFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/datescan/)")
	flags.String("profile", "", "Name of configuration profile to use")
	flags.BoolP("verbose", "v", false, "Enable verbose (debug) logging output")

	flags.StringSliceP("file", "f", nil, "Required. Files or directories to scan (comma separated or repeated)")
	flags.StringP("output", "o", DefaultOutput, `Report destination ("-" for stdout)`)
	flags.String("format", string(report.FormatText), `Report format ("text", "json", "yaml")`)

	flags.Int("concurrency", scanner.DefaultConcurrency, "Number of parallel workers (0 for auto-detect CPU cores)")
	flags.Int("queue-depth", scanner.DefaultQueueDepth, "Inbound queue capacity per worker")
	flags.StringArray("ignore", []string{}, "Gitignore-style patterns for paths to skip (can be specified multiple times)")
	flags.Bool("follow-symlinks", scanner.DefaultFollowSymlinks, "Follow symbolic links while walking")
	flags.Bool("skip-vendored", scanner.DefaultSkipVendored, "Skip vendored directories such as node_modules and vendor")
	flags.Bool("keep-duplicates", scanner.DefaultKeepDuplicates, "Keep repeated dates within a file")
	flags.String("default-encoding", "", `Charset for files that are not valid UTF-8 (e.g. "windows-1252")`)
	flags.String("pattern", "", "Custom date regular expression with month, day and year groups")

	flags.Bool("no-color", false, "Disable coloured report headings")
	flags.Bool("no-progress", false, "Disable the progress spinner")
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile, env, flags),
// validates the merged configuration and sets up the logger. The returned
// Config.Scan has its Logger set and has passed scanner.Options.Validate.
func LoadAndValidate(cfgFile, profileName string, flags *pflag.FlagSet) (Config, *slog.Logger, error) {
	var cfg Config
	v := viper.New()

	// Initialize a temporary basic logger for early loading errors
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		} else {
			tempLogger.Debug("User home directory unavailable, skipping home config path", slog.String("error", err.Error()))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.String("error", err.Error()))
			return cfg, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		cfg.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", cfg.ConfigFilePath))
	}

	// --- Apply Profile ---
	cfg.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("%w: profile '%s' not found in config file '%s'", scanner.ErrConfigValidation, profileName, configPath)
			tempLogger.Error(err.Error())
			return cfg, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.String("error", err.Error()))
			return cfg, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", name))
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", name), slog.String("error", err.Error()))
				return cfg, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.String("error", err.Error()))
		return cfg, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Inverted boolean flags always win when given explicitly.
	if flags != nil {
		if flags.Changed("no-color") {
			noColor, _ := flags.GetBool("no-color")
			cfg.Color = !noColor
		}
		if flags.Changed("no-progress") {
			noProgress, _ := flags.GetBool("no-progress")
			cfg.Progress = !noProgress
		}
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	cfg.Scan.Logger = logHandler

	if err := validate(&cfg, logger); err != nil {
		return cfg, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", cfg.ConfigFilePath),
		slog.String("profile", cfg.ProfileName),
		slog.Bool("verbose", cfg.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return cfg, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("inputs", []string{})
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("verbose", false)
	v.SetDefault("outputFormat", string(report.FormatText))
	v.SetDefault("color", true)
	v.SetDefault("progress", true)

	v.SetDefault("concurrency", scanner.DefaultConcurrency)
	v.SetDefault("queueDepth", scanner.DefaultQueueDepth)
	v.SetDefault("ignore", []string{})
	v.SetDefault("followSymlinks", scanner.DefaultFollowSymlinks)
	v.SetDefault("skipVendored", scanner.DefaultSkipVendored)
	v.SetDefault("keepDuplicates", scanner.DefaultKeepDuplicates)
	v.SetDefault("defaultEncoding", "")
	v.SetDefault("pattern", "")
}

func validate(cfg *Config, logger *slog.Logger) error {
	inputs := make([]string, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		if in = strings.TrimSpace(in); in != "" {
			inputs = append(inputs, in)
		}
	}
	if len(inputs) == 0 {
		err := fmt.Errorf("%w: at least one input path is required (-f, --file)", scanner.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "inputs"))
		return err
	}
	cfg.Inputs = inputs

	if strings.TrimSpace(cfg.Output) == "" {
		err := fmt.Errorf("%w: output path must not be empty (-o, --output)", scanner.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "output"))
		return err
	}

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		err = fmt.Errorf("%w: invalid value for key 'outputFormat' (flag --format): %w", scanner.ErrConfigValidation, err)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", cfg.OutputFormat))
		return err
	}
	cfg.Format = format

	if err := cfg.Scan.Validate(); err != nil {
		logger.Error("Invalid scan options", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ToStdout reports whether the report goes to standard output.
func (c Config) ToStdout() bool {
	return c.Output == StdoutOutput
}
