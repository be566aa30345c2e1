package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kr/pretty"

	"bsc/internal/arena"
	"bsc/internal/diagnostics"
	bserrors "bsc/internal/errors"
	"bsc/internal/parser"
	"bsc/internal/sb"
	"bsc/internal/sb/lower"
)

// checkCmd implements `bsc check <file> [--history]`: parses and lowers
// (not optimize/schedule — just enough to surface diagnostics), recording
// any BSError to the diagnostics store under a fresh session UUID.
// `--history` instead lists previously recorded diagnostics.
func checkCmd(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	history := fs.Bool("history", false, "list past diagnostics instead of checking a file")
	dsn := fs.String("dsn", "", "diagnostics store DSN (default: in-memory sqlite)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := diagnostics.Open(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("opening diagnostics store: %w", err)
	}
	defer store.Close()

	if *history {
		records, err := store.History(ctx, 20)
		if err != nil {
			return err
		}
		for _, r := range records {
			pretty.Println(r)
		}
		return nil
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: bsc check <file> [--history]")
	}
	path := rest[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	sessionID := uuid.New()

	proc, compileErr := parser.Parse(arena.New(), path, string(source))
	if compileErr == nil {
		_, compileErr = lower.Lower(sb.NewContext(), proc)
	}
	if compileErr != nil {
		var bserr *bserrors.BSError
		if errors.As(compileErr, &bserr) {
			recordErr := store.Record(ctx, diagnostics.Record{
				SessionID:  sessionID,
				Kind:       bserr.Kind,
				Message:    bserr.Message,
				File:       bserr.Location.File,
				Line:       bserr.Location.Line,
				Column:     bserr.Location.Column,
				ReportedAt: time.Now(),
			})
			if recordErr != nil {
				fmt.Fprintf(os.Stderr, "bsc check: failed to record diagnostic: %v\n", recordErr)
			}
		}
		return compileErr
	}

	fmt.Println("ok")
	return nil
}
