package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meloburn/cmd/meloburn/commands"
	"meloburn/internal/shared"
)

const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context) int {
	rootCmd := commands.NewRootCommand(shared.AppVersion)
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case shared.IsCancelled(err) || ctx.Err() != nil:
		shared.ColorWarning.Println("⚠️ Cancelled by user.")
		return exitCancelled
	default:
		shared.ColorError.Printf("❌ %v\n", err)
		return exitError
	}
}
