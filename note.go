package secretnote

import (
	"fmt"
	"time"

	"github.com/secretnote/client-go/internal/api"
)

// Note is an envelope stored on the relay.
type Note struct {
	ID          string
	Fingerprint Fingerprint
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Envelope    Envelope
}

// ReceivedNote is a note together with the outcome of opening it.
type ReceivedNote struct {
	Note   *Note
	Result *DecodedResult
	// Err is set when the note could not be opened. Result is nil then.
	Err error
}

// newNoteFromAPI converts a relay note.
func newNoteFromAPI(n api.Note) (*Note, error) {
	fp, err := ParseFingerprint(n.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", n.ID, err)
	}
	env, err := ParseEnvelope(n.Data)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", n.ID, err)
	}
	return &Note{
		ID:          n.ID,
		Fingerprint: fp,
		CreatedAt:   n.CreatedAt,
		ExpiresAt:   n.ExpiresAt,
		Envelope:    env,
	}, nil
}
