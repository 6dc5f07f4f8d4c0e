package main

import (
	"context"
	"fmt"
	"os"

	"github.com/1broseidon/deskgrid/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "deskgrid: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
