package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fuabioo/kontab/internal/cli"
	"github.com/fuabioo/kontab/internal/config"
)

var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(context.Background(),
		version,
		commit,
		date,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
