package relay

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/secretnote/client-go/internal/api"
)

// Store keeps notes in memory, grouped by recipient fingerprint.
type Store struct {
	mu    sync.RWMutex
	ttl   time.Duration
	byFP  map[string][]*storedNote
	byKey map[string]*storedNote
	count int
}

type storedNote struct {
	id          string
	fingerprint string
	data        string
	createdAt   time.Time
	expiresAt   time.Time
}

func (n *storedNote) toAPI() api.Note {
	return api.Note{
		ID:          n.id,
		CreatedAt:   n.createdAt,
		ExpiresAt:   n.expiresAt,
		Fingerprint: n.fingerprint,
		Data:        n.data,
	}
}

// NewStore returns an empty store whose notes live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		byFP:  make(map[string][]*storedNote),
		byKey: make(map[string]*storedNote),
	}
}

// NoteID is the identifier the relay assigns to data: the lowercase hex
// SHA-256 of the base64 text.
func NoteID(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func noteKey(fingerprint, id string) string {
	return fingerprint + "/" + id
}

// Put stores data for fingerprint. Posting the same data to the same
// fingerprint twice is a no-op that returns the existing note with created
// false. The same data posted to another fingerprint is a separate note.
func (s *Store) Put(fingerprint, data string, now time.Time) (note api.Note, created bool) {
	id := NoteID(data)
	key := noteKey(fingerprint, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byKey[key]; ok {
		if now.Before(old.expiresAt) {
			return old.toAPI(), false
		}
		s.removeLocked(old)
	}

	n := &storedNote{
		id:          id,
		fingerprint: fingerprint,
		data:        data,
		createdAt:   now.UTC(),
		expiresAt:   now.Add(s.ttl).UTC(),
	}
	s.byKey[key] = n
	s.byFP[fingerprint] = append(s.byFP[fingerprint], n)
	s.count++
	return n.toAPI(), true
}

// List returns the unexpired notes for fingerprint, newest first.
func (s *Store) List(fingerprint string, now time.Time) []api.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]api.Note, 0, len(s.byFP[fingerprint]))
	for _, n := range s.byFP[fingerprint] {
		if now.Before(n.expiresAt) {
			notes = append(notes, n.toAPI())
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes
}

// Sweep deletes every note expired at now and returns how many it removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, n := range s.byKey {
		if !now.Before(n.expiresAt) {
			s.removeLocked(n)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored notes, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Store) removeLocked(n *storedNote) {
	delete(s.byKey, noteKey(n.fingerprint, n.id))
	list := s.byFP[n.fingerprint]
	for i, other := range list {
		if other == n {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.byFP, n.fingerprint)
	} else {
		s.byFP[n.fingerprint] = list
	}
	s.count--
}
