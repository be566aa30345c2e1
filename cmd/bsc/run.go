package main

import (
	"fmt"
	"log/slog"
	"os"

	"bsc/internal/backend/win64"
	"bsc/internal/hir"
	"bsc/internal/pipeline"
	"bsc/internal/sb"
)

// runCmd implements `bsc run <file>`: spec.md §6's CLI behavior exactly —
// parse, dump HIR, lower to SB, optimize, emit Graphviz to stdout, invoke
// the (stub) win64 backend. Exit code 0 on success, 1 on failure (via the
// returned error).
func runCmd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bsc run <file>")
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := pipeline.Compile(args[0], string(source))
	if err != nil {
		return err
	}

	hir.Dump(os.Stdout, result.HIR, args[0])
	sb.Graphviz(os.Stdout, result.SB)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return win64.Emit(logger, result.SB)
}
