package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/custody/internal/auth"
	"github.com/erazemk/custody/internal/config"
	"github.com/erazemk/custody/internal/db"
	"github.com/erazemk/custody/internal/store"
)

// clientSecretBytes is the entropy of the front-end client secret.
const clientSecretBytes = 24

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and the front-end client secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}

			if _, err := os.Stat(cfg.DB); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DB)
			}

			database, secret, err := initDatabase(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), cfg.DB, secret)

			path := configFile
			if path == "" {
				path = config.FileName
			}
			written, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "Default config written: %s\n", path)
			}
			return nil
		},
	}
}

// initDatabase creates a new database, ensures the schema, and stores the
// hash of a freshly generated client secret. The secret itself is returned
// and never stored.
func initDatabase(ctx context.Context, path string) (*sql.DB, string, error) {
	database, err := db.Open(path, 0)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	secret, err := auth.GenerateSecret(clientSecretBytes)
	if err != nil {
		return fail(fmt.Errorf("generating client secret: %w", err))
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return fail(err)
	}

	if err := store.SetSetting(ctx, database, store.SettingClientSecretHash, hash); err != nil {
		return fail(fmt.Errorf("storing client secret: %w", err))
	}

	return database, secret, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, secret string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Front-end client secret:")
	fmt.Fprintf(w, "  %s\n", secret)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this secret. It cannot be recovered.")
}
