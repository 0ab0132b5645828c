package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"meloburn/internal/core/metadata"
	"meloburn/internal/shared"
)

// NewProbeCommand creates the probe command, a dry run of tag reading and enrichment
func NewProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <file>...",
		Short: "Show the metadata meloburn would use for audio files, without copying anything.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProbeCommand,
	}

	cmd.Flags().Bool("offline", false, "Only read tags, skip online lookups")

	return cmd
}

type probeRow struct {
	path       string
	record     shared.TrackRecord
	incomplete bool
	err        error
}

func runProbeCommand(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")

	_, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rows := make([]probeRow, len(args))
	if offline {
		err = probeTags(ctx, serviceContainer.Extractor.Extract, args, rows)
	} else {
		// Lookups stay sequential so provider rate limits hold
		for i, path := range args {
			record, incomplete, procErr := serviceContainer.Enricher.Process(ctx, path)
			if procErr != nil {
				err = procErr
				break
			}
			rows[i] = probeRow{path: path, record: record, incomplete: incomplete}
		}
	}
	if err != nil {
		return err
	}

	printProbeTable(rows)
	serviceContainer.WarningCollector.PrintSummary()
	return nil
}

type extractFunc func(ctx context.Context, path string) (shared.RawTags, shared.AudioInfo, error)

// probeTags reads tags of every path concurrently. Per-file failures land in the row.
func probeTags(ctx context.Context, extract extractFunc, paths []string, rows []probeRow) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			raw, info, err := extract(gctx, path)
			if shared.IsCancelled(err) {
				return err
			}
			rows[i] = probeRow{
				path: path,
				record: shared.TrackRecord{
					SourcePath:  path,
					Artist:      raw.Artist,
					Album:       raw.Album,
					Title:       raw.Title,
					Year:        shared.ExtractYear(raw.Date),
					Genre:       raw.Genre,
					TrackNumber: raw.TrackNumber,
					AlbumArt:    raw.Picture,
					AudioInfo:   info,
				},
				err: err,
			}
			return nil
		})
	}
	return g.Wait()
}

func printProbeTable(rows []probeRow) {
	headers := []string{"File", "Artist", "Album", "#", "Title", "Language", "Art", "Audio"}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		name := filepath.Base(row.path)
		if row.incomplete {
			name += " *"
		}
		if row.err != nil {
			body = append(body, []string{name, fmt.Sprintf("error: %v", row.err)})
			continue
		}

		number := ""
		if row.record.HasTrackNumber() {
			number = strconv.Itoa(row.record.TrackNumber)
		}
		art := "no"
		if len(row.record.AlbumArt) > 0 {
			art = "yes"
		}
		body = append(body, []string{
			shared.TruncateString(name, 40),
			row.record.Artist,
			row.record.Album,
			number,
			row.record.Title,
			row.record.Language,
			art,
			metadata.Describe(row.record.AudioInfo),
		})
	}
	fmt.Println(renderTable(headers, body, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
	for _, row := range rows {
		if row.incomplete {
			shared.ColorWarning.Println("* incomplete metadata, placeholders used")
			break
		}
	}
}
