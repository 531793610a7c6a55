package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "loadouts-migrate",
	Short:         "Manage the loadouts database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("db-url") == "" {
			return errors.New("missing required --db-url param")
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database to a schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("to")
		if version == "" {
			return errors.New("missing required parameter --to")
		}
		logger, err := logging.New("info", logging.FormatText, os.Stderr)
		if err != nil {
			return err
		}
		err = db.MigrateTo(cmd.Context(), viper.GetString("db-url"), version, logger)
		if err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New("warn", logging.FormatText, os.Stderr)
		if err != nil {
			return err
		}
		version, err := db.MigrationVersion(viper.GetString("db-url"), logger)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-url", "", "URL-formatted connection string to the DB to operate upon")
	migrateCmd.Flags().String("to", "", `version to which the database should be migrated. May specify "latest" to migrate to the latest version.`)
	rootCmd.AddCommand(migrateCmd, versionCmd)

	viper.SetEnvPrefix("LOADOUTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("db-url", rootCmd.PersistentFlags().Lookup("db-url"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
