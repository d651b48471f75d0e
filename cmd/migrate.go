package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/segments-api/internal/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage database migrations for the Segments API.

The schema is derived from the models: users, projects and segments.
Migrations only ever add tables, columns and indexes.

Available subcommands:
  up      - Apply all pending migrations
  status  - Show which tables are missing`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long: `Apply all pending database migrations.

Missing tables are created and existing ones gain any new columns
or indexes, bringing the schema up to date.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Display the current status of database migrations.

Lists the tables that do not exist yet in the configured database.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func openDatabase() (*database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.Initialize(cfg.Database)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := db.PendingMigrations()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		printPending(cmd, pending)
		return nil
	}

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}
	fmt.Fprintf(out, "Created tables: %s\n", strings.Join(pending, ", "))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := db.PendingMigrations()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Database Migration Status")
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("=", 50))
	printPending(cmd, pending)
	return nil
}

func printPending(cmd *cobra.Command, pending []string) {
	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending migrations")
		return
	}
	fmt.Fprintln(out, "Pending migrations:")
	for _, table := range pending {
		fmt.Fprintf(out, "  • create table %s\n", table)
	}
}
