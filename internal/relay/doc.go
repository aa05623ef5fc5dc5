// Package relay implements the note relay: a small HTTP store-and-forward
// service that holds encrypted envelopes for a recipient fingerprint until
// they expire.
//
// The relay never sees plaintext. It stores the base64 envelope exactly as
// posted and hands it back to anyone who asks for the fingerprint.
//
// # Routes
//
//	POST /api/v1/notes                {"fingerprint": "<hex>", "data": "<base64>"}
//	GET  /api/v1/notes/{fingerprint}  newest first, expired notes omitted
//	GET  /metrics                     Prometheus exposition
//	GET  /healthz
//
// Failures are answered with {"status": "ERROR", "message": "..."} and a
// 400 status, or 429 when a client exceeds its rate limit.
//
// # Limits
//
// Posting is limited to 200 notes per hour and fetching to one request per
// second, both per client address. Notes live for 24 hours and the sweeper
// removes expired ones once a minute. Every limit is configurable through
// [Config].
package relay
