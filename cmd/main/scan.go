package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"moodle/analyzer/internal/config"
	"moodle/analyzer/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type scanFlags struct {
	exclude    []int
	outputDir  string
	logLevel   string
	minUsers   int
	noProgress bool
	format     string
	workers    int
	cache      bool
}

func newScanCmd() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan Moodle courses and export empty ones grouped by top-level category",
		Long: `Scan fetches all categories and courses from the Moodle web service, counts the
enrolled users of every course and writes the courses with at most --min-users
users into one file per top-level category.

Examples:
  # Export empty courses to ./csv_exports
  moodle-analyzer scan

  # Skip two faculties and treat courses with a single user as empty
  moodle-analyzer scan -e 12 -e 40 --min-users 1

  # Reuse downloaded data from courses.json and course_users/
  moodle-analyzer scan --cache --no-progress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, flags)
		},
	}

	defaultOut := "csv_exports"
	if wd, err := os.Getwd(); err == nil {
		defaultOut = filepath.Join(wd, "csv_exports")
	}

	cmd.Flags().IntSliceVarP(&flags.exclude, "exclude", "e", nil, "Top-level category IDs to exclude. Repeat for multiple.")
	cmd.Flags().StringVarP(&flags.outputDir, "csv-path", "o", defaultOut, "Directory to save export files.")
	cmd.Flags().StringVarP(&flags.logLevel, "log-level", "l", "", "Logging level (debug/info/warn/...), overrides log.level.")
	cmd.Flags().IntVar(&flags.minUsers, "min-users", 0, "Consider course empty if users <= this.")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Hide progress bar.")
	cmd.Flags().StringVar(&flags.format, "format", "csv", "Export format (csv or json).")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent enrollment requests, overrides scan.workers.")
	cmd.Flags().BoolVar(&flags.cache, "cache", false, "Use the on-disk JSON cache, overrides cache.enabled.")

	return cmd
}

func runScan(cmd *cobra.Command, flags *scanFlags) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(viper.New(), configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	log.SetLevel(level)

	if flags.workers > 0 {
		cfg.Scan.Workers = flags.workers
	}
	if flags.cache {
		cfg.Cache.Enabled = true
	}
	if flags.minUsers < 0 {
		return fmt.Errorf("--min-users must not be negative, got %d", flags.minUsers)
	}

	app, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting Moodle course scan...")

	return app.Run(ctx, container.ScanRequest{
		ExcludedTopLevelIDs: flags.exclude,
		OutputDir:           flags.outputDir,
		Format:              flags.format,
		MinUsers:            flags.minUsers,
		ShowProgress:        !flags.noProgress,
		ProgressOutput:      cmd.OutOrStdout(),
	})
}
