package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/criticdev/gh-critic/internal/cache"
	"github.com/criticdev/gh-critic/internal/config"
)

var outputJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the review cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number and size of cached reviews",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}

		stats, err := store.GetStats()
		if err != nil {
			return fmt.Errorf("failed to read cache stats: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(stats)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DIRECTORY\tENTRIES\tBYTES")
		fmt.Fprintf(w, "%s\t%d\t%d\n", stats.Dir, stats.Entries, stats.TotalBytes)
		return w.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached reviews",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}

		removed, err := store.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		successColor.Printf("Removed %d cached review(s) from %s\n", removed, store.Dir())
		return nil
	},
}

// openCacheStore resolves the cache directory without requiring the
// full review configuration; clearing the cache must work even when
// OPENAI_BASE_URL is unset.
func openCacheStore() (*cache.Store, error) {
	dir := viper.GetString("CACHE_DIR")
	if dir == "" {
		dir = config.DefaultCacheDir
	}
	return cache.NewStore(dir, slog.Default())
}

func init() { //nolint:gochecknoinits // Cobra command registration
	cacheStatsCmd.Flags().BoolVar(&outputJSON, "json", false, "Output stats as JSON")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
