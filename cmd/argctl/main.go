package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayush/argumetrics/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().Run(ctx, os.Args[1:]); err != nil {
		if err != cli.ErrUsage {
			fmt.Fprintln(os.Stderr, "argctl:", err)
		}
		stop()
		os.Exit(1)
	}
}
