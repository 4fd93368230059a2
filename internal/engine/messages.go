package engine

import (
	"github.com/google/uuid"

	"rsvp-chunker/internal/chunker"
)

// Submit asks the engine to segment Text into chunks of about TargetLength characters.
type Submit struct {
	JobID        uuid.UUID
	Text         string
	TargetLength int
}

// Event is a message from the engine to its host.
type Event interface {
	event()
}

// Ready reports that the tokenizer finished loading and Submit is accepted.
type Ready struct{}

// Progress reports how many tokens of a job have been segmented.
type Progress struct {
	JobID     uuid.UUID
	Processed int
	Total     int
}

// Done is the terminal success message. It carries the full result.
type Done struct {
	JobID uuid.UUID
	chunker.Result
}

// Failed is the terminal failure message. A Failed with a nil JobID reports that the
// tokenizer could not be loaded.
type Failed struct {
	JobID  uuid.UUID
	Reason string
	Err    error
}

func (Ready) event()    {}
func (Progress) event() {}
func (Done) event()     {}
func (Failed) event()   {}

func (f Failed) Error() string { return f.Reason }
func (f Failed) Unwrap() error { return f.Err }

func failed(jobID uuid.UUID, err error) Failed {
	return Failed{JobID: jobID, Reason: err.Error(), Err: err}
}
