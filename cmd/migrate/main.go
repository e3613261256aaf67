package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (searched upwards from the working directory by default)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(dir)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			slog.Info("migration up successful")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, all of them unless steps is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(dir)
			if err != nil {
				return err
			}
			defer m.Close()

			if len(args) == 1 {
				steps, err := strconv.Atoi(args[0])
				if err != nil || steps <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				err = m.Steps(-steps)
				if err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
			} else if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			slog.Info("migration down successful")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(dir)
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	})

	return root
}

func open(dir string) (*migrate.Migrate, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, errors.New("DB_URL environment variable is required")
	}

	migrationsPath := dir
	if migrationsPath == "" {
		found, err := findMigrationsDir()
		if err != nil {
			return nil, err
		}
		migrationsPath = found
	}
	absMigrationsPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, err
	}

	return migrate.New("file://"+absMigrationsPath, dbURL)
}

func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	candidates := []string{}
	current := cwd
	for i := 0; i < 6; i++ {
		candidates = append(candidates, filepath.Join(current, "migrations"))
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
		)
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.New("migrations directory not found")
}
