package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"meloburn/internal/cache"
)

// NewCacheCommand creates the cache command group
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the lookup cache.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how many lookups are cached.",
		Args:  cobra.NoArgs,
		RunE:  runCacheStatsCommand,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached lookup.",
		Args:  cobra.NoArgs,
		RunE:  runCacheClearCommand,
	})

	return cmd
}

var tableDescriptions = map[cache.Table]string{
	cache.ArtistsByTrack: "Artist by title",
	cache.TracksByArtist: "Title by artist",
	cache.Albums:         "Album by title and artist",
	cache.AlbumArt:       "Cover art URL",
}

func runCacheStatsCommand(cmd *cobra.Command, args []string) error {
	config, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(cache.Tables)+1)
	total := 0
	for _, table := range cache.Tables {
		n := serviceContainer.Cache.Len(table)
		total += n
		rows = append(rows, []string{string(table), tableDescriptions[table], strconv.Itoa(n)})
	}
	rows = append(rows, []string{"", "Total", strconv.Itoa(total)})
	fmt.Println(renderTable([]string{"Table", "Lookup", "Entries"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))

	size := "missing"
	if stat, err := os.Stat(config.Paths.CacheFile); err == nil {
		size = humanize.Bytes(uint64(stat.Size()))
	}
	serviceContainer.Logger.Info("Cache file: %s (%s)", config.Paths.CacheFile, size)
	return nil
}

func runCacheClearCommand(cmd *cobra.Command, args []string) error {
	config, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}
	if err := serviceContainer.Cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	serviceContainer.Logger.Success("Cleared %s", config.Paths.CacheFile)
	return nil
}
