package secretnote

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/secretnote/client-go/internal/crypto"
)

// Fingerprint is the digest of a public key's SPKI encoding.
type Fingerprint []byte

// Hex returns the lowercase hex form used on the relay.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f)
}

// String returns colon-separated lowercase hex pairs, e.g. "3f:a0:...".
func (f Fingerprint) String() string {
	var b strings.Builder
	for i, c := range f {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}

// Base58 returns a compact form for display.
func (f Fingerprint) Base58() string {
	return base58.Encode(f)
}

// Equal reports whether f and o are the same fingerprint.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return len(f) > 0 && subtle.ConstantTimeCompare(f, o) == 1
}

// ParseFingerprint accepts the Hex or String forms.
func ParseFingerprint(s string) (Fingerprint, error) {
	raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(s), ":", ""))
	if err != nil {
		return nil, fmt.Errorf("parse fingerprint: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parse fingerprint: empty")
	}
	return raw, nil
}

// fingerprintBytes digests already exported SPKI bytes.
func fingerprintBytes(p crypto.Provider, alg crypto.Algorithm, spki []byte) (Fingerprint, error) {
	sum, err := p.Digest(alg, spki)
	if err != nil {
		return nil, keyError("fingerprint", err)
	}
	return sum, nil
}
