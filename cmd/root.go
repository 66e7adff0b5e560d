package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/config"
	"github.com/pable/go-fb-metrics/pkg/logger"
)

var (
	cfgPath  string
	dbPath   string
	logLevel string

	// cfg is loaded once per invocation, before any command runs.
	cfg = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "fbmetrics",
	Short: "Football match metrics tool",
	Long: `Aggregate StatsBomb open-data event streams into per-team match metrics
(possession, passing, shooting, defending, goalkeeping, transitions, efficiency).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. Ctrl-C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (default $FBMETRICS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads configuration, lets explicit flags override it and installs
// the global logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cmd.Context(), cfgPath)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	} else {
		dbPath = cfg.DBPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := logger.Init(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
