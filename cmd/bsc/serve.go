package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"bsc/internal/pipeline"
	"bsc/internal/sb"
	"bsc/internal/visualize"
)

// serveCmd implements `bsc serve <file> [--addr]`: runs the live graph
// server, recompiling file and broadcasting a fresh Graphviz dump to every
// connected viewer whenever it changes on disk.
func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "address to serve the live graph view on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: bsc serve <file> [--addr]")
	}
	path := rest[0]

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	server := visualize.NewServer(logger)

	recompile := func() (string, error) {
		source, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		result, err := pipeline.Compile(path, string(source))
		if err != nil {
			return "", err
		}
		var b strings.Builder
		sb.Graphviz(&b, result.SB)
		return b.String(), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("bsc serve: listening", "addr", *addr, "file", path)
	return visualize.Watch(ctx, server, *addr, path, 500*time.Millisecond, recompile)
}
