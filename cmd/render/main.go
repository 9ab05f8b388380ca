package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/elocompare/internal/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := render.NewCommand(ctx).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
