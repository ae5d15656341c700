// carctl - консольный клиент маркетплейса автомобилей.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := newRootCmd().ExecuteContext(rootCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		rootCancel()
		os.Exit(1)
	}
}
