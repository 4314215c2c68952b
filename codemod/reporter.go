package codemod

import (
	"github.com/sokinpui/codemod/internal/ui"
	"github.com/sokinpui/codemod/model"
)

// Reporter receives progress of an import fixing run as it happens.
type Reporter interface {
	OnRootMissing(dir string)
	OnRootStart(dir string, files int, label string)
	// OnFileDone is called for every scanned file, modified or not.
	OnFileDone(f model.FileResult)
}

// ConsoleReporter prints progress lines through the ui package.
type ConsoleReporter struct{}

func (ConsoleReporter) OnRootMissing(dir string) {
	ui.Warning("%s", ui.MissingLine(dir))
}

func (ConsoleReporter) OnRootStart(dir string, files int, label string) {
	ui.Info("%s", ui.ProcessingLine(files, label, dir))
}

func (ConsoleReporter) OnFileDone(f model.FileResult) {
	switch {
	case f.Err != nil:
		ui.Error("%s", ui.FileErrorLine(f.Stage, f.Path, f.Err))
	case f.Modified:
		ui.Success("%s", ui.ModifiedLine(f.RelPath, f.Changes))
	}
}

type nopReporter struct{}

func (nopReporter) OnRootMissing(string) {}

func (nopReporter) OnRootStart(string, int, string) {}

func (nopReporter) OnFileDone(model.FileResult) {}
