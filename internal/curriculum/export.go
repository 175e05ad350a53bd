package curriculum

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes the JSON document to path.
func (p *Package) WriteJSON(path string) error {
	data, err := p.JSON()
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return writeFileAtomic(path, data)
}

// WriteMarkdown writes the Markdown report to path.
func (p *Package) WriteMarkdown(path string, opts RenderOptions) error {
	return writeFileAtomic(path, []byte(p.MarkdownWith(opts)))
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so an existing file is never left half-written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: fmt.Errorf("write: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: fmt.Errorf("close: %w", err)}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: fmt.Errorf("chmod: %w", err)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}
