package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets cli_test.go's scripts invoke `bsc` as an in-process
// subprocess (testscript.RunMain) instead of requiring a prebuilt binary on
// PATH, the idiomatic way rogpeppe/go-internal/testscript drives a CLI.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"bsc": func() int { return run(os.Args[1:]) },
	}))
}

// TestScripts runs every testdata/script/*.txt fixture (testscript's own
// txtar-flavored script format) against the bsc binary.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
