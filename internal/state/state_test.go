package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/codemod/internal/fs"
)

func recordRewrite(t *testing.T, m *Manager, path, before, after string) Operation {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(after), 0o644))
	op, err := m.Record(path, []byte(before), []byte(after))
	require.NoError(t, err)
	return op
}

func TestManager_PersistsHistory(t *testing.T) {
	dir := t.TempDir()
	m, err := New(filepath.Join(dir, DirName))
	require.NoError(t, err)

	file := filepath.Join(dir, "a.ts")
	op := recordRewrite(t, m, file, "import a from './a';\n", "import a from './a.js';\n")
	require.NoError(t, m.Write("esmfix", []Operation{op}))

	reloaded, err := New(filepath.Join(dir, DirName))
	require.NoError(t, err)
	entries, current := reloaded.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, current)
	assert.Equal(t, "esmfix", entries[0].Tool)
	assert.Equal(t, []Operation{op}, entries[0].Operations)
}

func TestManager_RevertAndReapply(t *testing.T) {
	dir := t.TempDir()
	m, err := New(filepath.Join(dir, DirName))
	require.NoError(t, err)

	file := filepath.Join(dir, "a.ts")
	op := recordRewrite(t, m, file, "before\n", "after\n")
	require.NoError(t, m.Write("esmfix", []Operation{op}))

	ops, err := m.GetOperationsToUndo()
	require.NoError(t, err)
	done, failed := m.Revert(ops, fs.DiskWriter{})
	assert.Equal(t, []string{file}, done)
	assert.Empty(t, failed)
	got, _ := os.ReadFile(file)
	assert.Equal(t, "before\n", string(got))

	ops, err = m.GetOperationsToUndo()
	require.NoError(t, err)
	assert.Nil(t, ops)

	ops, err = m.GetOperationsToRedo()
	require.NoError(t, err)
	done, failed = m.Reapply(ops, fs.DiskWriter{})
	assert.Equal(t, []string{file}, done)
	assert.Empty(t, failed)
	got, _ = os.ReadFile(file)
	assert.Equal(t, "after\n", string(got))
}

func TestManager_RevertSkipsEditedFiles(t *testing.T) {
	dir := t.TempDir()
	m, err := New(filepath.Join(dir, DirName))
	require.NoError(t, err)

	file := filepath.Join(dir, "a.ts")
	op := recordRewrite(t, m, file, "before\n", "after\n")
	require.NoError(t, os.WriteFile(file, []byte("hand edited\n"), 0o644))

	done, failed := m.Revert([]Operation{op}, fs.DiskWriter{})
	assert.Empty(t, done)
	require.Len(t, failed, 1)
	assert.Equal(t, file, failed[0].Path)
	got, _ := os.ReadFile(file)
	assert.Equal(t, "hand edited\n", string(got))
}

func TestManager_WriteTruncatesRedoBranch(t *testing.T) {
	dir := t.TempDir()
	m, err := New(filepath.Join(dir, DirName))
	require.NoError(t, err)

	file := filepath.Join(dir, "a.ts")
	first := recordRewrite(t, m, file, "0", "1")
	require.NoError(t, m.Write("gridsnap", []Operation{first}))
	_, err = m.GetOperationsToUndo()
	require.NoError(t, err)

	second := recordRewrite(t, m, file, "0", "2")
	require.NoError(t, m.Write("gridsnap", []Operation{second}))

	entries, current := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, current)
	assert.Equal(t, second, entries[0].Operations[0])

	ops, err := m.GetOperationsToRedo()
	require.NoError(t, err)
	assert.Nil(t, ops)
}

func TestManager_RejectsCorruptState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("zero\n"), 0o644))

	_, err := New(dir)
	assert.Error(t, err)
}
