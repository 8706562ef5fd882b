package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andncl/arbok-driver/internal/app"
	"github.com/andncl/arbok-driver/internal/cli"
	"github.com/andncl/arbok-driver/internal/hclconf"
)

// main is the entrypoint for the arbok compiler binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling. Startup panics out of app.NewApp are recovered into a
// plain error.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader := hclconf.NewLoader()
	arbokApp := app.NewApp(outW, appConfig, loader)
	return arbokApp.Run(context.Background())
}
