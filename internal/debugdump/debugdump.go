// Package debugdump writes per-phase debug artifacts under the directory
// named by the CLI's -d flag. Mirrors the debug_folder option of the
// compiler this tool reimplements.
package debugdump

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
)

// Writer drops one file per phase into a base directory. A nil Writer or a
// zero-value one (as returned by Disabled) makes every Write a no-op so
// callers never need to branch on whether debugging was requested.
type Writer struct {
	dir string
}

// New returns a Writer rooted at dir, creating it if necessary. An empty
// dir returns a disabled Writer.
func New(dir string) (*Writer, error) {
	if dir == "" {
		return &Writer{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cerr.Wrap(cerr.KindIoError, "creating debug directory "+dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Disabled returns a Writer whose Write calls do nothing.
func Disabled() *Writer { return &Writer{} }

// Enabled reports whether this writer actually persists anything.
func (w *Writer) Enabled() bool { return w != nil && w.dir != "" }

// Write drops phase's raw bytes into "<dir>/<phase>.<ext>".
func (w *Writer) Write(phase, ext string, data []byte) error {
	if !w.Enabled() {
		return nil
	}
	path := filepath.Join(w.dir, phase+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerr.Wrap(cerr.KindIoError, "writing debug artifact "+path, err)
	}
	return nil
}

// WriteJSON marshals v and drops it as "<dir>/<phase>.json".
func (w *Writer) WriteJSON(phase string, v any) error {
	if !w.Enabled() {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cerr.Wrap(cerr.KindIoError, "marshaling debug artifact "+phase, err)
	}
	return w.Write(phase, "json", data)
}
