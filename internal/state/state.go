package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sokinpui/codemod/internal/fs"
)

const (
	// DirName is the default state directory below the base directory.
	DirName       = ".codemod"
	stateFileName = "state.codemod"
	objectsDir    = "objects"

	// ActionModify is the only action recorded so far.
	ActionModify = "modify"
)

// Operation records one rewritten file. The hashes name snapshots of the
// content before and after the rewrite.
type Operation struct {
	Path       string
	Action     string
	BeforeHash string
	AfterHash  string
}

// HistoryEntry represents one complete run of a tool.
type HistoryEntry struct {
	Timestamp  int64
	Tool       string
	Operations []Operation
}

// State represents the entire state file.
type State struct {
	History      []HistoryEntry
	CurrentIndex int
}

// Manager handles the lifecycle of the state file and its snapshots.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
}

// New creates and loads a state manager rooted at stateDir.
func New(stateDir string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Join(stateDir, objectsDir), 0o755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Entries returns the recorded history and the index of the current entry.
func (m *Manager) Entries() ([]HistoryEntry, int) {
	return m.state.History, m.state.CurrentIndex
}

func (m *Manager) load() error {
	m.state = &State{CurrentIndex: -1}

	data, err := fs.ReadOptional(m.statePath)
	if err != nil {
		return err
	}

	// Normalize line endings to LF
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")
	if strings.TrimSpace(blocks[0]) == "" {
		return nil
	}

	// First block is current index
	index, err := strconv.Atoi(strings.TrimSpace(blocks[0]))
	if err != nil {
		return fmt.Errorf("invalid state file: could not parse current index: %w", err)
	}
	m.state.CurrentIndex = index

	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		header := strings.Fields(lines[0])
		if len(header) == 0 {
			return fmt.Errorf("invalid state file: empty entry header")
		}
		ts, err := strconv.ParseInt(header[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid state file: could not parse timestamp from '%s': %w", lines[0], err)
		}
		entry := HistoryEntry{Timestamp: ts}
		if len(header) > 1 {
			entry.Tool = header[1]
		}

		opLines := lines[1:]
		if len(opLines)%4 != 0 {
			return fmt.Errorf("invalid state file: incomplete operation record")
		}
		for i := 0; i < len(opLines); i += 4 {
			entry.Operations = append(entry.Operations, Operation{
				Action:     opLines[i],
				Path:       opLines[i+1],
				BeforeHash: opLines[i+2],
				AfterHash:  opLines[i+3],
			})
		}
		m.state.History = append(m.state.History, entry)
	}

	if m.state.CurrentIndex >= len(m.state.History) {
		m.state.CurrentIndex = len(m.state.History) - 1
	}
	return nil
}

func (m *Manager) save() error {
	var blocks []string

	// Current index block
	blocks = append(blocks, strconv.Itoa(m.state.CurrentIndex))

	// History entry blocks
	for _, entry := range m.state.History {
		var b strings.Builder
		b.WriteString(strconv.FormatInt(entry.Timestamp, 10))
		if entry.Tool != "" {
			b.WriteString(" " + entry.Tool)
		}
		for _, op := range entry.Operations {
			b.WriteString("\n" + op.Action)
			b.WriteString("\n" + op.Path)
			b.WriteString("\n" + op.BeforeHash)
			b.WriteString("\n" + op.AfterHash)
		}
		blocks = append(blocks, b.String())
	}

	content := strings.Join(blocks, "\n\n") + "\n"
	if err := fs.WriteFile(m.statePath, []byte(content)); err != nil {
		return fmt.Errorf("could not save state: %w", err)
	}
	return nil
}

// Snapshot stores data under its content hash and returns the hash.
func (m *Manager) Snapshot(data []byte) (string, error) {
	hash := fs.ContentHash(data)
	p := m.objectPath(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}
	if err := fs.WriteFile(p, data); err != nil {
		return "", fmt.Errorf("could not store snapshot: %w", err)
	}
	return hash, nil
}

// Object returns the snapshot stored under hash.
func (m *Manager) Object(hash string) ([]byte, error) {
	data, err := os.ReadFile(m.objectPath(hash))
	if err != nil {
		return nil, fmt.Errorf("missing snapshot %s: %w", hash, err)
	}
	return data, nil
}

func (m *Manager) objectPath(hash string) string {
	return filepath.Join(m.StateDir, objectsDir, hash)
}

// Record snapshots before and after and returns the operation describing
// the rewrite of path.
func (m *Manager) Record(path string, before, after []byte) (Operation, error) {
	beforeHash, err := m.Snapshot(before)
	if err != nil {
		return Operation{}, err
	}
	afterHash, err := m.Snapshot(after)
	if err != nil {
		return Operation{}, err
	}
	return Operation{
		Path:       path,
		Action:     ActionModify,
		BeforeHash: beforeHash,
		AfterHash:  afterHash,
	}, nil
}

// Write adds a new set of operations to the history. Entries past the
// current index are discarded.
func (m *Manager) Write(tool string, operations []Operation) error {
	if len(operations) == 0 {
		return nil
	}
	if m.state.CurrentIndex < len(m.state.History)-1 {
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}

	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp:  time.Now().UTC().Unix(),
		Tool:       tool,
		Operations: operations,
	})
	m.state.CurrentIndex++
	return m.save()
}

// GetOperationsToUndo gets the last operations and moves the history pointer.
func (m *Manager) GetOperationsToUndo() ([]Operation, error) {
	if m.state.CurrentIndex < 0 {
		return nil, nil
	}
	ops := m.state.History[m.state.CurrentIndex].Operations
	m.state.CurrentIndex--
	return ops, m.save()
}

// GetOperationsToRedo gets the next operations and moves the history pointer.
func (m *Manager) GetOperationsToRedo() ([]Operation, error) {
	nextIndex := m.state.CurrentIndex + 1
	if nextIndex >= len(m.state.History) {
		return nil, nil
	}
	m.state.CurrentIndex = nextIndex
	return m.state.History[nextIndex].Operations, m.save()
}
