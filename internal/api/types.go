package api

import "time"

// PostNoteRequest is the POST /api/v1/notes body.
type PostNoteRequest struct {
	// Fingerprint is the lowercase hex fingerprint of the recipient's
	// encryption public key.
	Fingerprint string `json:"fingerprint"`
	// Data is the standard base64 encoding of the envelope.
	Data string `json:"data"`
}

// PostNoteResponse is returned when a note has been stored.
type PostNoteResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// Note is one stored note as returned by GET /api/v1/notes/{fingerprint}.
type Note struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Fingerprint string    `json:"fingerprint"`
	Data        string    `json:"data"`
}

// NotesResponse wraps the notes list.
type NotesResponse struct {
	Status string `json:"status"`
	Notes  []Note `json:"notes"`
}
