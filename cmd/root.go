package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "segments-api",
	Short: "Segments API server",
	Long: `Segments API - A REST backend for annotating video segments

Projects hold a video and its audio tracks. Segments are time ranges
inside a project that collect views, likes and per-user annotations.

Features:
  • Users with bcrypt passwords and signed bearer tokens
  • Projects with their segments embedded
  • Per-user descriptions_prosody annotations merged field by field
  • Prometheus metrics and Swagger documentation`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it.
// Commands like version and help never call it.
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger; explicit flags win over configuration
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logger.Logger, error) {
	opts := logger.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON}

	if cmd.Flags().Changed("log-level") {
		opts.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("json-logs") {
		opts.JSON, _ = cmd.Flags().GetBool("json-logs")
	}
	if opts.Level == "" {
		opts.Level = "info"
	}

	return logger.New(opts)
}
