package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/codemod/internal/ui"
)

// SourceProvider reads component text that does not come from a file and
// hands results back to the same place.
type SourceProvider struct {
	stdin     io.Reader
	readClip  func() (string, error)
	writeClip func(string) error
}

// New creates a SourceProvider backed by os.Stdin and the system clipboard.
func New() *SourceProvider {
	return &SourceProvider{
		stdin:     os.Stdin,
		readClip:  clipboard.ReadAll,
		writeClip: clipboard.WriteAll,
	}
}

// ReadStdin reads all of stdin.
func (sp *SourceProvider) ReadStdin() (string, error) {
	ui.Header("--- Reading from stdin ---")
	content, err := io.ReadAll(sp.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(content), nil
}

// ReadClipboard returns the clipboard text; an empty clipboard yields "".
func (sp *SourceProvider) ReadClipboard() (string, error) {
	ui.Header("--- Reading from clipboard ---")
	content, err := sp.readClip()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to process.")
		return "", nil
	}
	return content, nil
}

// WriteClipboard replaces the clipboard text.
func (sp *SourceProvider) WriteClipboard(content string) error {
	if err := sp.writeClip(content); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
