// Command bsc is the `bs` optimizing compiler's CLI: read a source file,
// parse it to HIR, lower to the SB graph, optimize, and hand the result to
// a backend — spec.md §6's "single executable", generalized into
// subcommands (run/dump/check/serve/version) the way the teacher's
// cmd/sentra dispatches on os.Args[1] rather than reaching for a flags
// framework.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// colorStderr reports whether stderr is a terminal go-isatty can detect,
// used to decide whether reportError dresses up a BSError with ANSI color.
var colorStderr = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main's logic, factored out so the testscript-based CLI suite
// (cmd/bsc's cli_test.go) can register it as a subprocess command via
// testscript.RunMain instead of shelling out to a built binary.
func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}

	var err error
	switch args[0] {
	case "run":
		err = runCmd(args[1:])
	case "dump":
		err = dumpCmd(args[1:])
	case "check":
		err = checkCmd(args[1:])
	case "serve":
		err = serveCmd(args[1:])
	case "version", "--version", "-v":
		versionCmd()
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "bsc: unknown command %q\n", args[0])
		usage()
		return 1
	}

	if err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  bsc run <file>                compile and report success/failure
  bsc dump hir|sb|dot <file>    print one pipeline stage's output
  bsc check <file> [--history]  parse+lower only; --history lists past diagnostics
  bsc serve <file> [--addr]     serve a live-updating SB graph view over WebSocket
  bsc version                   print build info`)
}

// reportError prints err to stderr, coloring a *bserrors.BSError's caret
// diagram when stderr is a terminal.
func reportError(err error) {
	if colorStderr {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
