// Command chemcheck is the offline command-line front end of the checker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ChemCheck/internal/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
