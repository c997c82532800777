package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clog "github.com/charmbracelet/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.Error("codelingo", "err", err)
		stop()
		os.Exit(1)
	}
}
