package pipeline

import (
	"time"

	"github.com/ShayCichocki/curricula/pkg/models"
)

// Status is the state of a stage in a progress event.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Event reports stage progress.
type Event struct {
	Stage  models.Stage
	Status Status
	// Elapsed is the stage duration; zero for StatusStarted.
	Elapsed time.Duration
	// Err is set for StatusFailed.
	Err error
}

// Observer is called synchronously for every event, on the goroutine running
// the pipeline.
type Observer func(Event)
