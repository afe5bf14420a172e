// Command yoinkd runs the Yoink room server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"yoink.exe.dev/srv"
)

// fileConfig is the shape of an optional --config YAML file. Flags take
// precedence over it: the file is read after flag parsing, and
// mergeConfig keeps a file value only where the matching flag was not
// set explicitly.
type fileConfig struct {
	Addr           string   `yaml:"addr"`
	DictionaryURLs []string `yaml:"dictionaryUrls"`
	LogLevel       string   `yaml:"logLevel"`
	LogFile        string   `yaml:"logFile"`
}

func main() {
	var (
		configPath string
		addr       string
		dictURLs   []string
		logLevel   string
		logFile    string
	)

	root := &cobra.Command{
		Use:   "yoinkd",
		Short: "Yoink room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := fileConfig{Addr: addr, DictionaryURLs: dictURLs, LogLevel: logLevel, LogFile: logFile}
			if configPath != "" {
				loaded, err := loadFileConfig(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = mergeConfig(loaded, cmd, addr, dictURLs, logLevel, logFile)
			}

			setupLogging(cfg.LogLevel, cfg.LogFile)

			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file supplying defaults")
	flags.StringVar(&addr, "addr", ":5177", "address to listen on")
	flags.StringArrayVar(&dictURLs, "dict-url", nil, "dictionary word list URL (repeatable)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "rotate logs to this file instead of stderr")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// mergeConfig lets any flag the user actually passed on the command
// line override the same field loaded from the config file.
func mergeConfig(file fileConfig, cmd *cobra.Command, addr string, dictURLs []string, logLevel, logFile string) fileConfig {
	out := file
	if cmd.Flags().Changed("addr") || out.Addr == "" {
		out.Addr = addr
	}
	if cmd.Flags().Changed("dict-url") || len(out.DictionaryURLs) == 0 {
		out.DictionaryURLs = dictURLs
	}
	if cmd.Flags().Changed("log-level") || out.LogLevel == "" {
		out.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-file") || out.LogFile == "" {
		out.LogFile = logFile
	}
	return out
}

// setupLogging installs the process-wide slog handler. Output goes to a
// rotating file via lumberjack when --log-file is set, otherwise to
// stderr; stderr output is JSON when stderr isn't a terminal (e.g.
// under systemd or in a container) and slog's key=value text form when
// it is.
func setupLogging(level, file string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	if file != "" {
		writer := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(writer, opts)))
		return
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
}

func run(cfg fileConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	server, err := srv.New(loadCtx, srv.Config{DictionaryURLs: cfg.DictionaryURLs})
	cancel()
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, cfg.Addr)
	})

	return g.Wait()
}
