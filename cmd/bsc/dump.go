package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bsc/internal/backend/llvmgen"
	"bsc/internal/hir"
	"bsc/internal/pipeline"
	"bsc/internal/sb"
)

// dumpCmd implements `bsc dump hir|sb|dot|llvm <file>`: prints just one
// pipeline stage's output instead of run's full sequence.
func dumpCmd(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: bsc dump hir|sb|dot|llvm <file>")
	}
	stage, path := args[0], args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := pipeline.Compile(path, string(source))
	if err != nil {
		return err
	}

	switch stage {
	case "hir":
		hir.Dump(os.Stdout, result.HIR, path)
	case "sb":
		sb.Text(os.Stdout, result.SB)
	case "dot":
		sb.Graphviz(os.Stdout, result.SB)
	case "llvm":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		ir, err := llvmgen.Emit(name, result.SB)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, ir)
	default:
		return fmt.Errorf("bsc dump: unknown stage %q (want hir, sb, dot, or llvm)", stage)
	}
	return nil
}
