// Package api provides the HTTP client for the SecretNote note relay. It
// handles request/response serialization and retries transient failures
// with exponential backoff.
//
// # Endpoints
//
//   - [Client.PostNote]: POST /api/v1/notes stores a base64 envelope for a
//     recipient fingerprint.
//   - [Client.GetNotes]: GET /api/v1/notes/{fingerprint} lists the unexpired
//     notes for a fingerprint, newest first.
//
// The request and response types in this package are also the relay
// server's wire schema.
//
// # Retry Behavior
//
// By default requests are retried up to 3 times for these HTTP status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500, 502, 503, 504
//
// The delay doubles with each attempt (1s, 2s, 4s, ...) with 20% jitter. A
// Retry-After header given in seconds raises the delay for that attempt.
// Network errors are retried on the same schedule.
//
// # Error Handling
//
// Error statuses are returned as *apierrors.APIError, which matches
// apierrors.ErrNoteRejected (400), apierrors.ErrRateLimited (429) and
// apierrors.ErrServer (5xx) with errors.Is. Exhausted network retries return
// *apierrors.NetworkError.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use.
package api
