package commands

import (
	"context"

	"github.com/spf13/cobra"

	"meloburn/internal/core/organizer"
	"meloburn/internal/shared"
)

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "organize <source> <dest>",
		Short: "Sort a music folder into Artist/Album (Year)/NN - Title files.",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrganizeCommand,
	}
}

func runOrganizeCommand(cmd *cobra.Command, args []string) error {
	_, serviceContainer, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	source, dest := args[0], args[1]
	serviceContainer.Logger.Info("🎵 Organizing %s into %s", source, dest)

	var result organizer.Result
	err = runWithProgress(cmd.Context(), serviceContainer.Logger, func(ctx context.Context, onProgress shared.ProgressFunc) error {
		var runErr error
		result, runErr = serviceContainer.Organizer.Organize(ctx, source, dest, onProgress)
		return runErr
	})

	// Warnings first, then the summary, even when the run failed
	serviceContainer.WarningCollector.PrintSummary()
	printOrganizeSummary(result)
	if err != nil {
		return err
	}

	serviceContainer.Logger.Success("Organized %d of %d tracks", result.Copied, result.Analyzed)
	return nil
}
