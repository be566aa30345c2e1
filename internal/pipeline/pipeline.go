// Package pipeline wires the lexer, parser, HIR→SB lowering, optimizer, and
// scheduler into the single front-to-back compile path every cmd/bsc
// subcommand shares. It plays the same "one orchestrator the CLI calls
// into" role as the teacher's internal/compiler.Compiler, generalized from
// a single Compile(visitor AST) method into spec.md §2's multi-stage
// pipeline over the HIR and SB IRs.
package pipeline

import (
	"bsc/internal/arena"
	"bsc/internal/hir"
	"bsc/internal/parser"
	"bsc/internal/sb"
	"bsc/internal/sb/gcm"
	"bsc/internal/sb/lower"
	"bsc/internal/sb/opt"
)

// Result holds every stage's output for one compiled source file. Arena
// must stay alive as long as HIR or SB is examined, since both are
// allocated out of it.
type Result struct {
	Arena *arena.Arena
	HIR   *hir.Proc
	SB    *sb.Proc
	CFG   *gcm.CFG
}

// Compile runs parse -> lower -> optimize -> build-CFG against source,
// named path for diagnostics, stopping at the first stage that errors.
func Compile(path, source string) (*Result, error) {
	a := arena.New()

	proc, err := parser.Parse(a, path, source)
	if err != nil {
		return nil, err
	}

	ctx := sb.NewContext()
	graph, err := lower.Lower(ctx, proc)
	if err != nil {
		return nil, err
	}

	opt.Run(graph)

	cfg := gcm.BuildCFG(graph)

	return &Result{Arena: a, HIR: proc, SB: graph, CFG: cfg}, nil
}
