// Package delivery watches the note relay for new notes addressed to a set
// of fingerprints.
//
// # Polling
//
// The relay has no push channel, so [Poller] is the only [Strategy]. Each
// watched fingerprint keeps its own interval:
//
//   - starts at 2s and resets to 2s whenever a poll finds a new note
//   - grows by 1.5x after a poll that finds nothing new or fails
//   - is capped at 30s
//   - gets up to 30% random jitter to avoid synchronized clients
//
// Every note ID is delivered to the handler once. IDs that disappear from
// the relay (expired notes) are forgotten.
//
// # Usage
//
//	p := delivery.NewPoller(delivery.Config{Fetcher: apiClient})
//	p.Start(ctx, []string{fingerprintHex}, func(ctx context.Context, fp string, n api.Note) {
//	    // Handle new note
//	})
//	defer p.Stop()
//
// # Thread Safety
//
// Poller is safe for concurrent use. Fingerprints can be added or removed
// while it is running.
package delivery
