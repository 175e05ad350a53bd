package pipeline

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// ErrInvalidRequest is returned when the course idea or audience is missing.
var ErrInvalidRequest = errors.New("invalid request")

// GenerationError reports the stage that aborted a run. Err is the API error,
// a timeout, or an *extract.Error for unusable output.
type GenerationError struct {
	Stage models.Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
