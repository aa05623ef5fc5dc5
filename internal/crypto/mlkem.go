package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"
)

func generateMLKEM(r io.Reader) (any, any, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(r)
	if err != nil {
		return nil, nil, err
	}
	return kem.PublicKey(pub), kem.PrivateKey(priv), nil
}

// sealMLKEM encrypts plaintext to an ML-KEM-768 public key.
//
// The output is: KEM ciphertext (1088 bytes) || nonce (12 bytes) || AES-256-GCM
// ciphertext with tag. The GCM key is derived from the shared secret with
// [deriveKey].
func sealMLKEM(r io.Reader, material any, plaintext []byte) ([]byte, error) {
	scheme := mlkem768.Scheme()

	seed := make([]byte, scheme.EncapsulationSeedSize())
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("read encapsulation seed: %w", err)
	}
	ctKem, sharedSecret, err := scheme.EncapsulateDeterministically(material.(kem.PublicKey), seed)
	if err != nil {
		return nil, fmt.Errorf("%w: encapsulate: %v", ErrEncryptionFailed, err)
	}

	key, err := deriveKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	nonce := make([]byte, AESNonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	sealed, err := sealAESGCM(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	out := make([]byte, 0, len(ctKem)+len(nonce)+len(sealed))
	out = append(out, ctKem...)
	out = append(out, nonce...)
	return append(out, sealed...), nil
}

// openMLKEM reverses sealMLKEM.
func openMLKEM(material any, data []byte) ([]byte, error) {
	if len(data) < MLKEMCiphertextSize+AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextSize, len(data))
	}
	ctKem := data[:MLKEMCiphertextSize]
	nonce := data[MLKEMCiphertextSize : MLKEMCiphertextSize+AESNonceSize]
	sealed := data[MLKEMCiphertextSize+AESNonceSize:]

	sharedSecret, err := mlkem768.Scheme().Decapsulate(material.(kem.PrivateKey), ctKem)
	if err != nil {
		return nil, fmt.Errorf("%w: decapsulate: %v", ErrDecryptionFailed, err)
	}

	key, err := deriveKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return openAESGCM(key, nonce, sealed)
}

// deriveKey runs HKDF-SHA-512 over the KEM shared secret.
//
//   - Salt: SHA-256 of the KEM ciphertext
//   - Info: HKDFContext
//
// The result is a 256-bit AES-GCM key.
func deriveKey(sharedSecret, ctKem []byte) ([]byte, error) {
	salt := sha256.Sum256(ctKem)

	reader := hkdf.New(sha512.New, sharedSecret, salt[:], []byte(HKDFContext))
	key := make([]byte, AESGCMKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
