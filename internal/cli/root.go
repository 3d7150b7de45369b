// Package cli provides command-line interface implementation for logonlog.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"logonlog/internal/config"
	"logonlog/internal/logger"
)

var (
	configPath      string
	workstationRoot string
	userRoot        string

	cfg config.Config
	log *zap.SugaredLogger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "logonlog",
	Short: "Record logon events into daily spreadsheet logs",
	Long: `logonlog records who logged on to which computer, and when, into
per-day xlsx documents on a shared log server: one log per workstation
view and one per user view, newest logon first.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help and exit 0 if no subcommand is provided
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logger.Sync()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&workstationRoot, "workstation-root", "", "directory holding the workstation logs (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userRoot, "user-root", "", "directory holding the user logs (overrides config)")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(archiveCmd)
}

// loadConfig reads the config file, applies flag overrides and starts the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if workstationRoot != "" {
		loaded.WorkstationRoot = workstationRoot
	}
	if userRoot != "" {
		loaded.UserRoot = userRoot
	}
	cfg = loaded

	log = logger.Init(cfg.Logging)
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// printJSON writes v to w with pretty formatting.
func printJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
