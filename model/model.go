package model

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path    string
	RelPath string
	// Changes is the number of rewritten specifiers.
	Changes  int
	Modified bool
	// Stage is "reading" or "writing" when Err is set.
	Stage string
	Err   error
}

// DirResult collects the results of one scanned root.
type DirResult struct {
	Root     string
	Label    string
	Scanned  int
	Missing  bool
	Modified []FileResult
	Failed   []FileResult
}

// ImportSummary aggregates an import fixing run across all roots.
type ImportSummary struct {
	Dirs          []DirResult
	FilesModified int
	TotalChanges  int
	DryRun        bool
	// Interrupted is set when the run was cancelled before every file was seen.
	Interrupted bool
}

// Add folds a directory result into the totals.
func (s *ImportSummary) Add(d DirResult) {
	s.Dirs = append(s.Dirs, d)
	for _, f := range d.Modified {
		s.FilesModified++
		s.TotalChanges += f.Changes
	}
}

// Failed returns the paths of every file that could not be processed.
func (s ImportSummary) Failed() []string {
	var out []string
	for _, d := range s.Dirs {
		for _, f := range d.Failed {
			out = append(out, f.Path)
		}
	}
	return out
}

// ExitCode is 0 when at least one file was modified and 1 otherwise. An
// interrupted run always exits 1.
func (s ImportSummary) ExitCode() int {
	if s.FilesModified > 0 && !s.Interrupted {
		return 0
	}
	return 1
}

// FunctionReport tells what happened to one target function.
type FunctionReport struct {
	Name    string
	Found   bool
	Patched bool
	// Reason explains a non-match.
	Reason string
}

// PatchReport is the outcome of a grid-snap patch.
type PatchReport struct {
	Path      string
	Functions []FunctionReport
	Changed   bool
	Written   bool
	// Context holds source text near the first target when nothing matched.
	Context string
}

// Summary holds the results of a history operation for display.
type Summary struct {
	// Action is "Revert" or "Redo".
	Action   string
	Modified []string
	Failed   []string
	Message  string
}
