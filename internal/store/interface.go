package store

import (
	"io"
	"time"

	"github.com/ShayCichocki/curricula/internal/curriculum"
)

// History is the persistence surface used by the CLI and TUI.
type History interface {
	io.Closer
	Save(pkg *curriculum.Package, usage Usage) (*Run, error)
	List(limit int) ([]Run, error)
	Get(idOrPrefix string) (*Run, error)
	Delete(id string) error
	Purge(olderThan time.Duration) (int64, error)
}

var _ History = (*DB)(nil)
