package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"meloburn/internal/core/transfer"
	"meloburn/internal/shared"
)

// NewTransferCommand creates the transfer command
func NewTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer <staging> <target>",
		Short: "Copy an organized folder into the Music folder of a volume.",
		Args:  cobra.ExactArgs(2),
		RunE:  runTransferCommand,
	}

	cmd.Flags().String("mode", string(transfer.ModeMerge), "format (replace the Music folder) or merge")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask before replacing the Music folder")

	return cmd
}

func runTransferCommand(cmd *cobra.Command, args []string) error {
	modeFlag, _ := cmd.Flags().GetString("mode")
	yes, _ := cmd.Flags().GetBool("yes")

	mode, err := transfer.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	_, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	staging, target := args[0], args[1]
	if mode == transfer.ModeFormat && !yes {
		prompt := fmt.Sprintf("Everything under %s/%s will be deleted. Continue? (y/n)", target, transfer.MusicFolder)
		if !shared.GetYesNoInput(prompt, "n") {
			serviceContainer.Logger.Warning("Transfer aborted.")
			return nil
		}
	}

	serviceContainer.Logger.Info("📀 Copying %s to %s (%s)", staging, target, mode)

	var stats transfer.Stats
	err = runWithProgress(cmd.Context(), serviceContainer.Logger, func(ctx context.Context, onProgress shared.ProgressFunc) error {
		var runErr error
		stats, runErr = serviceContainer.Transfer.Transfer(ctx, staging, target, mode, onProgress)
		return runErr
	})

	serviceContainer.WarningCollector.PrintSummary()
	printTransferSummary(stats)
	if err != nil {
		return err
	}

	serviceContainer.Logger.Success("Transfer completed!")
	return nil
}
