package state

import (
	"fmt"

	"github.com/sokinpui/codemod/internal/fs"
)

// Failure pairs a path with the reason it could not be restored.
type Failure struct {
	Path string
	Err  error
}

// Revert puts back the content each operation replaced. A file edited since
// the operation is left alone and reported as failed.
func (m *Manager) Revert(ops []Operation, w fs.Writer) ([]string, []Failure) {
	return m.restore(ops, w, func(op Operation) (string, string) {
		return op.AfterHash, op.BeforeHash
	})
}

// Reapply writes each operation's result again after a revert.
func (m *Manager) Reapply(ops []Operation, w fs.Writer) ([]string, []Failure) {
	return m.restore(ops, w, func(op Operation) (string, string) {
		return op.BeforeHash, op.AfterHash
	})
}

func (m *Manager) restore(ops []Operation, w fs.Writer, hashes func(Operation) (string, string)) ([]string, []Failure) {
	var (
		done   []string
		failed []Failure
	)
	for _, op := range ops {
		expect, want := hashes(op)
		current, err := fs.FileHash(op.Path)
		if err != nil {
			failed = append(failed, Failure{Path: op.Path, Err: err})
			continue
		}
		if current != expect {
			failed = append(failed, Failure{Path: op.Path, Err: fmt.Errorf("file changed since the recorded run")})
			continue
		}
		data, err := m.Object(want)
		if err != nil {
			failed = append(failed, Failure{Path: op.Path, Err: err})
			continue
		}
		if err := w.WriteFile(op.Path, data); err != nil {
			failed = append(failed, Failure{Path: op.Path, Err: err})
			continue
		}
		done = append(done, op.Path)
	}
	return done, failed
}
