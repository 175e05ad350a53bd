package extract

import (
	"fmt"

	"github.com/ShayCichocki/curricula/pkg/models"
)

const previewLen = 300

// Error reports model output that could not be turned into usable records.
type Error struct {
	Stage  models.Stage
	Reason string
	// Preview is the start of the raw output, truncated for logs.
	Preview string
}

func (e *Error) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("unusable %s output: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("unusable %s output: %s (got %q)", e.Stage, e.Reason, e.Preview)
}

// Errorf builds an *Error carrying a preview of raw.
func Errorf(stage models.Stage, raw string, format string, args ...any) *Error {
	return &Error{
		Stage:   stage,
		Reason:  fmt.Sprintf(format, args...),
		Preview: truncate(raw, previewLen),
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "... (truncated)"
}
