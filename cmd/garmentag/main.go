package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anatolykoptev/go-garmentag/internal/cli"
)

func main() {
	if err := cli.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "Error: loading .env:", err)
		os.Exit(cli.ExitConfigError)
	}

	res := cli.Run(context.Background(), os.Args[1:], os.Getenv, cli.Streams{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	os.Exit(res.ExitCode)
}
