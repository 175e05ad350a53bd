package curriculum

import (
	"fmt"
	"strings"
)

// ValidationError reports every structural problem found in a package.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "curriculum validation failed"
	case 1:
		return "curriculum validation failed: " + e.Problems[0]
	default:
		return fmt.Sprintf("curriculum validation failed (%d problems): %s",
			len(e.Problems), strings.Join(e.Problems, "; "))
	}
}

// ExportError is returned when writing a package to disk fails.
// The in-memory package is unaffected.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
