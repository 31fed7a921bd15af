package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const usage = `usage: frankfurter <command> [flags]

commands:
  convert     rates of one day (latest unless --date is set)
  period      rates over a date range
  currencies  supported currency codes
  ping        check that the API answers

common flags:
  --url string        API base URL (env FRANKFURTER_URL)
  --timeout int       request timeout in seconds, 0 disables (env HTTP_TIMEOUT_SECONDS)
  --output string     json or yaml (default json)
  --log-level string  debug traces requests to stderr (env LOG_LEVEL)
`

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	inv, err := newInvocation(args[0], args[1:], stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "frankfurter %s: %v\n", args[0], err)
		return 2
	}
	if inv == nil {
		// --help
		return 0
	}
	defer inv.close()

	if err := cmd(ctx, inv); err != nil {
		fmt.Fprintf(stderr, "frankfurter %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
