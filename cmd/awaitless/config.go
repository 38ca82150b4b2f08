package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/t0technology/awaitless"
	"github.com/t0technology/awaitless/history"
	"github.com/t0technology/awaitless/rewrite"
	"github.com/t0technology/awaitless/shell"
)

const configDir = "~/.awaitless"

// Config holds the settings shared by every command. Values come from flags,
// then AWAITLESS_* environment variables, then the config file.
type Config struct {
	NoColor           bool   `mapstructure:"no-color"`
	LogLevel          string `mapstructure:"log-level"`
	AutoAwait         bool   `mapstructure:"autoawait"`
	Awaitless         bool   `mapstructure:"awaitless"`
	Strict            bool   `mapstructure:"strict"`
	History           string `mapstructure:"history"`
	NoHistory         bool   `mapstructure:"no-history"`
	TracebackFallback bool   `mapstructure:"traceback-fallback"`
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("awaitless")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if dir, err := homedir.Expand(configDir); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	return &cfg, nil
}

func (c *Config) logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func (c *Config) openHistory(logger zerolog.Logger) (*history.Store, error) {
	if c.NoHistory {
		return nil, nil
	}
	path := c.History
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(path, history.WithLogger(logger))
}

// newShell builds a shell from the config. The awaitless extension is always
// registered so that %load_ext can find it, and loaded unless disabled.
func (c *Config) newShell(options ...shell.Option) (*shell.Shell, error) {
	logger := c.logger()
	store, err := c.openHistory(logger)
	if err != nil {
		return nil, err
	}
	var rewriteOpts []rewrite.Option
	rewriteOpts = append(rewriteOpts, rewrite.WithLogger(logger))
	if c.Strict {
		rewriteOpts = append(rewriteOpts, rewrite.WithStrictShapes())
	}
	base := []shell.Option{
		shell.WithLogger(logger),
		shell.WithColor(!color.NoColor),
		shell.WithAutoAwait(c.AutoAwait),
		shell.WithTracebackFallback(c.TracebackFallback),
		shell.WithReservedPrefix(rewrite.Prefix),
		shell.WithExtensions(awaitless.New(rewriteOpts...)),
	}
	if store != nil {
		base = append(base, shell.WithHistory(store))
	}
	sh := shell.New(append(base, options...)...)
	if c.Awaitless {
		if err := sh.LoadExtension(awaitless.Name); err != nil {
			sh.Close()
			return nil, err
		}
	}
	return sh, nil
}

func replHistoryPath() string {
	dir, err := homedir.Expand(configDir)
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
