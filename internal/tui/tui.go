package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/codemod/codemod"
	"github.com/sokinpui/codemod/internal/ui"
	"github.com/sokinpui/codemod/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))           // Orange
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type progressMsg struct {
	root  string
	label string
	done  int
	total int
}

type doneMsg struct {
	codemod.Outcome
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// reporter forwards fixer progress to the running program. Lines go through
// Program.Println so they are printed above the spinner in order.
type reporter struct {
	program *tea.Program
	current progressMsg
}

func (r *reporter) println(s string) {
	if r.program != nil {
		r.program.Println(s)
	}
}

func (r *reporter) send() {
	if r.program != nil {
		r.program.Send(r.current)
	}
}

func (r *reporter) OnRootMissing(dir string) {
	r.println(warningStyle.Render(ui.MissingLine(dir)))
}

func (r *reporter) OnRootStart(dir string, files int, label string) {
	r.println(headerStyle.Render(ui.ProcessingLine(files, label, dir)))
	r.current = progressMsg{root: dir, label: label, total: files}
	r.send()
}

func (r *reporter) OnFileDone(f model.FileResult) {
	switch {
	case f.Err != nil:
		r.println(errorStyle.Render(ui.FileErrorLine(f.Stage, f.Path, f.Err)))
	case f.Modified:
		r.println(successStyle.Render(ui.ModifiedLine(f.RelPath, f.Changes)))
	}
	r.current.done++
	r.send()
}

// --- Model ---
type Model struct {
	fixer    *codemod.ImportFixer
	reporter *reporter
	spinner  spinner.Model
	state    state
	progress progressMsg
	stopping bool
	outcome  codemod.Outcome
	err      error
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

func New(fixer *codemod.ImportFixer) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	r := &reporter{}
	fixer.SetReporter(r)
	return Model{
		fixer:    fixer,
		reporter: r,
		spinner:  s,
		state:    stateProcessing,
	}
}

// SetProgram connects progress reporting to p. Call it before p.Run.
func (m Model) SetProgram(p *tea.Program) {
	m.reporter.program = p
}

// Result returns what the run produced once the program has exited.
func (m Model) Result() (codemod.Outcome, error) {
	return m.outcome, m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.state != stateProcessing {
				return m, tea.Quit
			}
			// Let the run stop between files and journal what it wrote;
			// doneMsg ends the program.
			m.fixer.Cancel()
			m.stopping = true
			return m, nil
		}

	case progressMsg:
		m.progress = msg
		return m, nil

	case doneMsg:
		m.state = stateSummary
		m.outcome = msg.Outcome
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.stopping {
			return fmt.Sprintf("%s Stopping after the current file...", m.spinner.View())
		}
		if m.progress.total == 0 {
			return fmt.Sprintf("%s Processing...", m.spinner.View())
		}
		return fmt.Sprintf("%s Processing %s files %d/%d %s",
			m.spinner.View(), m.progress.label, m.progress.done, m.progress.total,
			faintStyle.Render(m.progress.root))
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m Model) renderSummary() string {
	var b strings.Builder
	if h := m.outcome.History; h != nil {
		for i, line := range ui.HistorySummaryLines(*h) {
			if i == 0 {
				line = headerStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		return b.String()
	}

	for _, line := range ui.ImportSummaryLines(m.outcome.Imports) {
		b.WriteString(line + "\n")
	}
	if m.outcome.Imports.FilesModified == 0 {
		b.WriteString(faintStyle.Render("Nothing to do.") + "\n")
	}
	return b.String()
}

func (m Model) runApp() tea.Msg {
	outcome, err := m.fixer.Execute()
	if err != nil {
		// Check for detailed error to print stack
		var e *codemod.DetailedError
		if errors.As(err, &e) {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return doneMsg{outcome}
}
