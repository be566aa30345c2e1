package main

import (
	"os"

	"bsc/internal/buildinfo"
)

func versionCmd() {
	buildinfo.Print(os.Stdout)
}
