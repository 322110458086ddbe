package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/flickstream/internal/watchlist"
)

var watchlistCmd = &cobra.Command{
	Use:     "watchlist",
	Aliases: []string{"view", "ls"},
	Short:   "Show the watchlist with streaming availability",
	Long: `Show the TMDB watchlist enriched with where each movie is streaming.

Examples:
  flickstream watchlist                          # Everything, newest first
  flickstream watchlist -p Netflix -p "Paramount Plus"
  flickstream watchlist -q godfater --sort rating --desc
  flickstream watchlist --max-runtime 120 --region GB`,
	Args: cobra.NoArgs,
	RunE: runWatchlistCmd,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.Flags().StringP("query", "q", "", "Fuzzy title search")
	watchlistCmd.Flags().StringP("genre", "g", "", "Only this genre")
	watchlistCmd.Flags().StringSliceP("provider", "p", nil, "Only movies streaming on these services")
	watchlistCmd.Flags().Int("max-runtime", 0, "Maximum runtime in minutes")
	watchlistCmd.Flags().StringP("region", "r", "", "Region code (default: server setting)")
	watchlistCmd.Flags().String("sort", "", "Sort by added, title, release, rating or runtime")
	watchlistCmd.Flags().Bool("desc", false, "Reverse sort order")
}

func runWatchlistCmd(cmd *cobra.Command, _ []string) error {
	var p ViewParams
	p.Query, _ = cmd.Flags().GetString("query")
	p.Genre, _ = cmd.Flags().GetString("genre")
	p.Providers, _ = cmd.Flags().GetStringSlice("provider")
	p.MaxRuntime, _ = cmd.Flags().GetInt("max-runtime")
	p.Region, _ = cmd.Flags().GetString("region")
	p.Sort, _ = cmd.Flags().GetString("sort")
	p.Desc, _ = cmd.Flags().GetBool("desc")

	if p.Sort != "" {
		if _, err := watchlist.ParseSortField(p.Sort); err != nil {
			return err
		}
	}

	view, err := NewClient(serverURL).View(p)
	if err != nil {
		return fmt.Errorf("watchlist fetch failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, view)
		return nil
	}
	printView(out, view)
	return nil
}

func printView(w io.Writer, v *watchlist.View) {
	if len(v.Items) == 0 {
		if v.Total == 0 {
			fmt.Fprintln(w, "Watchlist is empty")
		} else {
			fmt.Fprintf(w, "No matches (%d movies in watchlist)\n", v.Total)
		}
		return
	}

	fmt.Fprintf(w, "Watchlist (%d of %d, region %s):\n\n", len(v.Items), v.Total, v.Region)
	fmt.Fprintf(w, "  %-8s %-38s %-4s %-7s %-4s %s\n", "ID", "TITLE", "YEAR", "RUNTIME", "RATE", "STREAMING")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))

	for _, it := range v.Items {
		year := "-"
		if it.Year > 0 {
			year = fmt.Sprint(it.Year)
		}
		runtime := "-"
		if it.Runtime != nil {
			runtime = fmt.Sprintf("%dm", *it.Runtime)
		}
		fmt.Fprintf(w, "  %-8d %-38s %-4s %-7s %-4.1f %s\n",
			it.ID, truncate(it.Title, 38), year, runtime, it.VoteAverage, joinOrDash(it.StreamingOn))
	}

	fmt.Fprintf(w, "\nCached %s", v.CachedAt.Local().Format(time.DateTime))
	if v.Stale {
		fmt.Fprint(w, " (stale: TMDB unreachable)")
	}
	fmt.Fprintln(w)
}
