package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest implements Provider.
func (e *Engine) Digest(alg Algorithm, data []byte) ([]byte, error) {
	switch alg {
	case SHA1:
		sum := sha1.Sum(data)
		return sum[:], nil
	case SHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case SHA384:
		sum := sha512.Sum384(data)
		return sum[:], nil
	case SHA512:
		sum := sha512.Sum512(data)
		return sum[:], nil
	case BLAKE3:
		sum := blake3.Sum256(data)
		return sum[:], nil
	}
	return nil, fmt.Errorf("%w: digest %s", ErrUnsupportedAlgorithm, alg)
}
