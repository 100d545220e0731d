// Command apenso appends the new-services section of an Apenso II report to a
// Word template, pairing units from a technical-visit document with the
// priced lines of a cost worksheet.
//
// Usage:
//
//	apenso [flags] [template visit worksheet output]
//	apenso history [--limit n]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
			code = exitErr.ExitCode()
		}
		stop()
		os.Exit(code)
	}
}
