// Command tenantrouter serves tenant-routed HTTP requests for one service
// family of the platform.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tenantrouter: %v\n", err)
		os.Exit(1)
	}
}
