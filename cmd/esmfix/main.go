package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/codemod"
	"github.com/sokinpui/codemod/internal/tui"
	"github.com/sokinpui/codemod/internal/ui"
)

func main() {
	cfg, err := cli.ParseImportFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fixer, err := codemod.NewImportFixer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	var outcome codemod.Outcome
	if isatty.IsTerminal(os.Stdout.Fd()) && !cfg.NoAnimation {
		outcome, err = runTUI(fixer)
	} else {
		outcome, err = runPlain(fixer)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(outcome.ExitCode())
}

func runTUI(fixer *codemod.ImportFixer) (codemod.Outcome, error) {
	if cfg := fixer.Config(); !cfg.Revert && !cfg.Redo {
		ui.PrintBanner(cfg.TargetExt)
	}

	model := tui.New(fixer)
	p := tea.NewProgram(model)
	model.SetProgram(p)
	final, err := p.Run()
	if err != nil {
		return codemod.Outcome{}, fmt.Errorf("running program: %w", err)
	}
	return final.(tui.Model).Result()
}

func runPlain(fixer *codemod.ImportFixer) (codemod.Outcome, error) {
	cfg := fixer.Config()
	if !cfg.Revert && !cfg.Redo {
		ui.PrintBanner(cfg.TargetExt)
	}
	fixer.SetReporter(codemod.ConsoleReporter{})

	// Stop between files on interrupt so written files still get journaled.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)
	go func() {
		<-interrupts
		fixer.Cancel()
	}()

	outcome, err := fixer.Execute()
	if err != nil {
		var e *codemod.DetailedError
		if errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return outcome, err
	}

	if outcome.History != nil {
		ui.PrintHistorySummary(*outcome.History)
	} else {
		ui.PrintImportSummary(outcome.Imports)
	}
	return outcome, nil
}
