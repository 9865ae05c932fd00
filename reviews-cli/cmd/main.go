package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sentimentreviews/reviews-cli/internal/app/cli/commands"
	"sentimentreviews/reviews-cli/internal/app/cli/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand(config.Load()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
