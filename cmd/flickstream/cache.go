package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/watchlist"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the TMDB response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and freshness windows",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatsCmd,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached entry",
	Long:  "Delete every cached entry. The next request for anything goes to TMDB.",
	Args:  cobra.NoArgs,
	RunE:  runCacheClearCmd,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStatsCmd(cmd *cobra.Command, _ []string) error {
	stats, err := NewClient(serverURL).CacheStats()
	if err != nil {
		return fmt.Errorf("cache stats failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, stats)
		return nil
	}
	printCacheStats(out, stats)
	return nil
}

func printCacheStats(w io.Writer, s *watchlist.CacheStats) {
	fmt.Fprintf(w, "  %-20s %-8s %-8s %s\n", "TABLE", "ENTRIES", "WINDOW", "NEWEST")
	for _, row := range []struct {
		name string
		ts   watchlist.TableStats
	}{
		{cache.TableWatchlist, s.Watchlist},
		{cache.TableProviders, s.Providers},
		{cache.TableDetails, s.Details},
	} {
		newest := "-"
		if row.ts.Latest != nil {
			newest = row.ts.Latest.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "  %-20s %-8d %-8s %s\n", row.name, row.ts.Entries, fmt.Sprintf("%gh", row.ts.WindowHours), newest)
	}
}

func runCacheClearCmd(cmd *cobra.Command, _ []string) error {
	resp, err := NewClient(serverURL).ClearCache()
	if err != nil {
		return fmt.Errorf("cache clear failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, resp)
		return nil
	}
	fmt.Fprintln(out, resp.Message)
	for _, table := range []string{cache.TableWatchlist, cache.TableProviders, cache.TableDetails} {
		fmt.Fprintf(out, "  %-20s %d deleted\n", table, resp.Deleted[table])
	}
	return nil
}
