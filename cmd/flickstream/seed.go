package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the development fixture into a local cache database",
	Long: `Reset a cache database and fill it with a five-movie watchlist,
US streaming providers and runtimes, stored under the account "dev_account".

Writes the database directly; the server does not need to be running.
Without --db the path comes from the discovered config file or DB_PATH.`,
	Args: cobra.NoArgs,
	RunE: runSeedCmd,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("db", "", "Cache database path")
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		var err error
		if path, err = seedDBPath(); err != nil {
			return err
		}
	}

	store, err := cache.Open(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	res, err := store.SeedDev(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, map[string]any{
			"database":  path,
			"account":   cache.DevAccountID,
			"movies":    res.Movies,
			"providers": res.Providers,
			"runtimes":  res.Runtimes,
		})
		return nil
	}
	fmt.Fprintf(out, "Seeded %s\n", path)
	fmt.Fprintf(out, "  Account:   %s\n", cache.DevAccountID)
	fmt.Fprintf(out, "  Movies:    %d\n", res.Movies)
	fmt.Fprintf(out, "  Providers: %d\n", res.Providers)
	fmt.Fprintf(out, "  Runtimes:  %d\n", res.Runtimes)
	return nil
}

// seedDBPath resolves the database from config without requiring TMDB
// credentials.
func seedDBPath() (string, error) {
	path, err := config.Resolve("")
	if err != nil {
		return "", err
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		if !errors.Is(err, config.ErrInvalid) {
			return "", fmt.Errorf("load config: %w", err)
		}
		// Unset credentials don't matter here; fall back to the environment.
		if cfg, err = config.LoadWithoutValidation(""); err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
	}
	return cfg.Database.Path, nil
}
