// Command nocofilter compiles table view filters into SQL WHERE clauses
// and runs filter scenarios.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	// Embedded zone database so IANA names resolve on hosts without one.
	_ "time/tzdata"

	"github.com/changsongyang/nocodb/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
