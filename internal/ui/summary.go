package ui

import (
	"strconv"

	"github.com/sokinpui/codemod/model"
)

// PrintBanner prints the fixer's opening banner.
func PrintBanner(targetExt string) {
	Println(Rule)
	Header(ImportTitle, targetExt)
	Println(Rule)
}

// ImportSummaryLines renders the closing block of an import fixing run.
func ImportSummaryLines(s model.ImportSummary) []string {
	lines := []string{
		"\n" + Rule,
		"Summary:",
		"  Files modified: " + strconv.Itoa(s.FilesModified),
		"  Total changes: " + strconv.Itoa(s.TotalChanges),
	}
	if failed := s.Failed(); len(failed) > 0 {
		lines = append(lines, "  Files failed: "+strconv.Itoa(len(failed)))
	}
	if s.DryRun {
		lines = append(lines, "  (dry run, nothing was written)")
	}
	if s.Interrupted {
		lines = append(lines, "  (interrupted, remaining files were skipped)")
	}
	return append(lines, Rule)
}

func PrintImportSummary(s model.ImportSummary) {
	for _, line := range ImportSummaryLines(s) {
		Println(line)
	}
}

// PrintPatchReport prints the outcome of a grid-snap patch.
func PrintPatchReport(r model.PatchReport) {
	if !r.Changed {
		Error("ERROR: No changes were made. Patterns may not match.")
		if len(r.Functions) > 0 {
			first := r.Functions[0].Name
			if r.Context != "" {
				Info("Found %s function", first)
				Println(r.Context)
			} else {
				Warning("Could not find %s function", first)
			}
		}
		printReasons(r.Functions)
		return
	}

	Success("Changes applied successfully")
	printReasons(r.Functions)
	if r.Written {
		Info("Updated %s", r.Path)
	}
}

func printReasons(fns []model.FunctionReport) {
	for _, fn := range fns {
		if !fn.Patched && fn.Reason != "" {
			Warning("  - %s: %s", fn.Name, fn.Reason)
		}
	}
}

// HistorySummaryLines renders the result of a revert or redo.
func HistorySummaryLines(s model.Summary) []string {
	lines := []string{"\n--- " + s.Action + " Summary ---"}
	if s.Message != "" {
		lines = append(lines, s.Message)
	}
	if len(s.Modified) > 0 {
		lines = append(lines, "Restored "+strconv.Itoa(len(s.Modified))+" file(s):")
		for _, f := range s.Modified {
			lines = append(lines, "  - "+f)
		}
	}
	if len(s.Failed) > 0 {
		lines = append(lines, "Failed to restore "+strconv.Itoa(len(s.Failed))+" file(s):")
		for _, f := range s.Failed {
			lines = append(lines, "  - "+f)
		}
	}
	return lines
}

// PrintHistorySummary prints the result of a revert or redo.
func PrintHistorySummary(s model.Summary) {
	Header("\n--- %s Summary ---", s.Action)
	if s.Message != "" {
		Info("%s", s.Message)
	}
	if len(s.Modified) > 0 {
		Success("Restored %d file(s):", len(s.Modified))
		for _, f := range s.Modified {
			Println("  - " + f)
		}
	}
	if len(s.Failed) > 0 {
		Error("Failed to restore %d file(s):", len(s.Failed))
		for _, f := range s.Failed {
			Println("  - " + f)
		}
	}
}
