package main

import (
	"context"
	"os"
	"syscall"

	"go-cover-resolver/internal/cli"
	"go-cover-resolver/internal/transport"

	"github.com/charmbracelet/fang"
)

func main() {
	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(transport.Version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
