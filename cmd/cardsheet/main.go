package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain runs the command and maps its error to an exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args[1:], env)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(env.Stderr, "Run 'cardsheet help' for usage.")
		}
	}
	return exitCodeFor(err)
}
