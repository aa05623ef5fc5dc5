package api

import (
	"context"
	"net/http"
	"net/url"
)

// Relay routes.
const (
	NotesPath = "/api/v1/notes"
)

// PostNote stores a note for the holder of req.Fingerprint.
func (c *Client) PostNote(ctx context.Context, req PostNoteRequest) (*PostNoteResponse, error) {
	var result PostNoteResponse
	if err := c.Do(ctx, http.MethodPost, NotesPath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetNotes lists unexpired notes addressed to fingerprint, newest first.
func (c *Client) GetNotes(ctx context.Context, fingerprint string) ([]Note, error) {
	var result NotesResponse
	if err := c.Do(ctx, http.MethodGet, NotesPath+"/"+url.PathEscape(fingerprint), nil, &result); err != nil {
		return nil, err
	}
	return result.Notes, nil
}
