package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/winc-tools/winc/internal/driver"
	"github.com/winc-tools/winc/internal/job"
	"github.com/winc-tools/winc/internal/log"
	"github.com/winc-tools/winc/internal/model"
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"
)

var (
	configPath string // config.xml used by the job, empty means next to the binary
	logCloser  io.Closer

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
	flagLog            string // value of --log flag

	flagRunArgs string
	flagMode    string
	flagShell   string
	flagTimeout time.Duration
)

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "config.xml to load - default is config.xml next to the winc binary")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", log.SinkStderr, "log target: stderr, stdout, discard, eventlog or a file path")

	runCmd.Flags().StringVar(&flagRunArgs, "run-args", "", "arguments passed to the compiled program")
	runCmd.Flags().StringVar(&flagMode, "mode", driver.ModeShell.String(), "how commands are spawned: shell (trim calibrated for cmd.exe) or direct (untrimmed, use it on non-Windows hosts)")
	runCmd.Flags().StringVar(&flagShell, "shell", "", "command interpreter used in shell mode")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "kill the compiler or the program after this long, 0 means no limit")

	// never print messages
	rootCmd.SilenceErrors = true

	// resolve the config, setup logging
	rootCmd.PersistentPreRunE = initWinc
	rootCmd.PersistentPostRunE = closeLog

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("winc failed", "err", err)
		_ = closeLog(nil, nil)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "winc",
	Short:        "Compile and run a C or C++ file, capturing its output to output.txt",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <source>",
	Short: "compile the source, run it with input.txt and write output.txt",
	Args:  cobra.ExactArgs(1),
	RunE:  doRun,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  doConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provide version of a winc",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("winc: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config: %s\n", configPath)
		}
		fmt.Printf("winc:   %s\n", info.Main.Version)
		fmt.Printf("go:     %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit: %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:   %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:  %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func doRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	mode, err := driver.ParseMode(flagMode)
	if err != nil {
		return err
	}

	attrs := slog.Group("winc",
		slog.String("source", log.Source),
		slog.String("cmd", "run"),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	j := job.New()
	defer j.CleanUp(context.WithoutCancel(ctx))

	j.SetSourceFile(args[0])
	j.SetRunArguments(flagRunArgs)
	j.SetMode(mode)
	j.SetTimeout(flagTimeout)
	if configPath != "" {
		j.SetConfigPath(configPath)
	}
	if flagShell != "" {
		interp := driver.DefaultInterpreter()
		interp.Path = flagShell
		j.SetInterpreter(interp)
	}

	if err := j.Initialize(ctx); err != nil {
		return err
	}
	if err := j.Run(ctx); err != nil {
		return err
	}
	return j.MakeOutputFile(ctx)
}

type configDump struct {
	Path  string `yaml:"path"`
	Flags string `yaml:"flags"`
	Error string `yaml:"error,omitempty"`
}

func doConfig(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = model.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	dump := configDump{Path: path}
	cfg, err := model.LoadConfigFile(path)
	if err != nil {
		dump.Error = model.ConfigErrKind(err).String()
		slog.Debug("config", "error", err)
	} else {
		dump.Flags = cfg.Flags
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer func() {
		_ = enc.Close()
	}()
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return nil
}

func initWinc(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("WINCCONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	}

	// initialize logging
	logger, closer, err := log.Open(flagLog, flagVerbose)
	if err != nil {
		return err
	}
	logCloser = closer
	slog.SetDefault(logger)

	slog.Debug("winc run", "configPath", configPath)
	return nil
}

func closeLog(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing log: %w", err)
	}
	return nil
}
