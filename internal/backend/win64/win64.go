// Package win64 is the (stub) native code emitter named in spec.md §1/§6.
// A full Windows x64 backend is out of scope for the core pipeline per the
// "full ISA code generation" Non-goal; this package only satisfies the CLI's
// requirement to "invoke the (stub) win64 backend."
package win64

import (
	"log/slog"

	"bsc/internal/sb"
)

// Emit logs that native code generation is unimplemented and returns nil so
// the CLI pipeline completes (spec.md §6: "invoke the (stub) win64
// backend").
func Emit(logger *slog.Logger, proc *sb.Proc) error {
	logger.Info("win64 backend is a stub; no native code emitted", "end", proc.End.Op.Mnemonic())
	return nil
}
