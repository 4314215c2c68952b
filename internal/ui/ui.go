package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

var out io.Writer = os.Stdout

// SetOutput redirects all console output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Output returns the current console writer.
func Output() io.Writer { return out }

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(out, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(out, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(out, "  "+format+"\n", a...)
}

func Println(a ...interface{}) {
	fmt.Fprintln(out, a...)
}

// --- Line formats ---

// Rule is the separator around the fixer's banner and summary.
var Rule = strings.Repeat("=", 70)

const ImportTitle = "ESM Import Fixer - Adding %s extensions to relative imports"

func ProcessingLine(n int, label, dir string) string {
	return fmt.Sprintf("\nProcessing %d %s files in %s...", n, label, dir)
}

func ModifiedLine(rel string, changes int) string {
	return fmt.Sprintf("  [OK] %s (%d changes)", rel, changes)
}

func MissingLine(dir string) string {
	return fmt.Sprintf("\n[WARNING] Directory not found: %s", dir)
}

// FileErrorLine reports a failed read or write; op is "reading" or "writing".
func FileErrorLine(op, path string, err error) string {
	return fmt.Sprintf("Error %s %s: %v", op, path, err)
}
