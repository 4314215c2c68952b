package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/codemod"
	"github.com/sokinpui/codemod/internal/ui"
)

func main() {
	cfg, err := cli.ParseGridFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Patched text goes to stdout, so diagnostics must not.
	if cfg.Stdin || cfg.Stdout {
		ui.SetOutput(os.Stderr)
	}

	outcome, err := codemod.NewGridPatcher(cfg).Execute()
	if err != nil {
		var e *codemod.DetailedError
		if errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		ui.Error("Error: %v", err)
		os.Exit(1)
	}

	if outcome.History != nil {
		ui.PrintHistorySummary(*outcome.History)
		if len(outcome.History.Failed) > 0 {
			os.Exit(1)
		}
		return
	}
	ui.PrintPatchReport(outcome.Patch)
}
