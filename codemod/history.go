package codemod

import (
	"fmt"

	"github.com/sokinpui/codemod/internal/fs"
	"github.com/sokinpui/codemod/internal/state"
	"github.com/sokinpui/codemod/model"
)

// history journals written files of one run and replays earlier runs. The
// state manager is opened on first use so dry runs leave no trace.
type history struct {
	tool     string
	stateDir string
	resolver *fs.PathResolver
	manager  *state.Manager
	ops      []state.Operation
}

func newHistory(tool, stateDir string, resolver *fs.PathResolver) *history {
	return &history{tool: tool, stateDir: stateDir, resolver: resolver}
}

func (h *history) open() (*state.Manager, error) {
	if h.manager != nil {
		return h.manager, nil
	}
	m, err := state.New(h.stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	h.manager = m
	return m, nil
}

// record snapshots a rewrite of path for the journal entry of this run.
func (h *history) record(path string, before, after []byte) error {
	m, err := h.open()
	if err != nil {
		return err
	}
	op, err := m.Record(path, before, after)
	if err != nil {
		return err
	}
	h.ops = append(h.ops, op)
	return nil
}

// commit writes the journal entry for everything recorded so far.
func (h *history) commit() error {
	if len(h.ops) == 0 {
		return nil
	}
	m, err := h.open()
	if err != nil {
		return err
	}
	return m.Write(h.tool, h.ops)
}

func (h *history) revert(w fs.Writer) (model.Summary, error) {
	m, err := h.open()
	if err != nil {
		return model.Summary{}, err
	}
	ops, err := m.GetOperationsToUndo()
	if err != nil {
		return model.Summary{}, err
	}
	if len(ops) == 0 {
		return model.Summary{Action: "Revert", Message: "No operation to revert."}, nil
	}
	done, failed := m.Revert(ops, w)
	return h.summary("Revert", "Reverted last run.", done, failed), nil
}

func (h *history) redo(w fs.Writer) (model.Summary, error) {
	m, err := h.open()
	if err != nil {
		return model.Summary{}, err
	}
	ops, err := m.GetOperationsToRedo()
	if err != nil {
		return model.Summary{}, err
	}
	if len(ops) == 0 {
		return model.Summary{Action: "Redo", Message: "No operation to redo."}, nil
	}
	done, failed := m.Reapply(ops, w)
	return h.summary("Redo", "Redid last reverted run.", done, failed), nil
}

func (h *history) summary(action, message string, done []string, failed []state.Failure) model.Summary {
	s := model.Summary{Action: action, Message: message}
	for _, p := range done {
		s.Modified = append(s.Modified, h.resolver.Rel(p))
	}
	for _, f := range failed {
		s.Failed = append(s.Failed, fmt.Sprintf("%s: %v", h.resolver.Rel(f.Path), f.Err))
	}
	return s
}
