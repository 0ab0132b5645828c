package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"meloburn/internal/core/burn"
	"meloburn/internal/core/transfer"
	"meloburn/internal/shared"
)

// NewSyncCommand creates the sync command: organize into staging, then burn to the volume
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <source> <target>",
		Short: "Organize a music folder and copy it onto a volume in one go.",
		Long: `Organizes <source> into a temporary staging folder and copies the result to
<target>/Music. With --mode format and --device the volume is reformatted as
FAT32 first; with --label it is renamed afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: runSyncCommand,
	}

	cmd.Flags().String("mode", string(transfer.ModeMerge), "format (wipe the volume) or merge")
	cmd.Flags().String("device", "", "Device or drive to format and label (e.g. /dev/sdb1, E:, disk4s1)")
	cmd.Flags().String("label", "", "Volume label to apply after copying")
	cmd.Flags().Bool("keep-staging", false, "Keep the staging folder for inspection")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask before formatting")

	return cmd
}

func runSyncCommand(cmd *cobra.Command, args []string) error {
	modeFlag, _ := cmd.Flags().GetString("mode")
	device, _ := cmd.Flags().GetString("device")
	label, _ := cmd.Flags().GetString("label")
	keepStaging, _ := cmd.Flags().GetBool("keep-staging")
	yes, _ := cmd.Flags().GetBool("yes")

	mode, err := transfer.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	if label != "" && device == "" {
		return errors.New("--label requires --device")
	}

	config, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	opts := burn.Options{
		Source:      args[0],
		Target:      args[1],
		Device:      device,
		Mode:        mode,
		Label:       label,
		StagingRoot: config.Paths.StagingDir,
		KeepStaging: keepStaging,
	}

	if mode == transfer.ModeFormat && !yes {
		erased := fmt.Sprintf("%s/%s", opts.Target, transfer.MusicFolder)
		if device != "" {
			erased = device
		}
		if !shared.GetYesNoInput(fmt.Sprintf("Everything on %s will be erased. Continue? (y/n)", erased), "n") {
			serviceContainer.Logger.Warning("Sync aborted.")
			return nil
		}
	}

	serviceContainer.Logger.Info("🎵 Syncing %s to %s (%s)", opts.Source, opts.Target, mode)

	var report burn.Report
	err = runWithProgress(cmd.Context(), serviceContainer.Logger, func(ctx context.Context, onProgress shared.ProgressFunc) error {
		var runErr error
		report, runErr = serviceContainer.Burn.Run(ctx, opts, onProgress)
		return runErr
	})

	serviceContainer.WarningCollector.PrintSummary()
	printBurnSummary(report)
	if keepStaging && report.StagingDir != "" {
		serviceContainer.Logger.Info("Staging folder kept at %s", report.StagingDir)
	}

	if err != nil {
		if errors.Is(err, burn.ErrAlreadyRunning) {
			serviceContainer.Logger.Warning("Another sync is using %s", opts.StagingRoot)
		}
		return err
	}

	serviceContainer.Logger.Success("Sync completed!")
	return nil
}
