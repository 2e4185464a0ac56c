package main

import (
	"os"

	"github.com/tinytelemetry/loggrowth/internal/report"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	a := &app{}
	if err := execute(a, newRootCmd(a)); err != nil {
		report.NewPrinter(os.Stdout, os.Stderr).Error("Error: %v", err)
		os.Exit(1)
	}
}
