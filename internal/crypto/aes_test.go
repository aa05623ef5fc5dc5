package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestAESCBC_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		keySize   int
		plaintext []byte
	}{
		{"empty", 16, []byte{}},
		{"short", 16, []byte("hello world")},
		{"one block", 16, bytes.Repeat([]byte{'a'}, AESBlockSize)},
		{"aes-192", 24, []byte("medium key")},
		{"aes-256", 32, make([]byte, 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			iv := make([]byte, AESBlockSize)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}
			if _, err := rand.Read(iv); err != nil {
				t.Fatal(err)
			}

			ciphertext, err := encryptAESCBC(key, iv, tt.plaintext)
			if err != nil {
				t.Fatalf("encryptAESCBC() error = %v", err)
			}

			// PKCS #7 always adds between 1 and 16 bytes.
			wantLen := (len(tt.plaintext)/AESBlockSize + 1) * AESBlockSize
			if len(ciphertext) != wantLen {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), wantLen)
			}

			decrypted, err := decryptAESCBC(key, iv, ciphertext)
			if err != nil {
				t.Fatalf("decryptAESCBC() error = %v", err)
			}
			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %x, want %x", decrypted, tt.plaintext)
			}
		})
	}
}

func TestAESCBC_InvalidIV(t *testing.T) {
	key := make([]byte, 16)
	for _, n := range []int{0, 8, 12, 32} {
		_, err := encryptAESCBC(key, make([]byte, n), []byte("x"))
		if !errors.Is(err, ErrInvalidIVSize) {
			t.Errorf("iv of %d bytes: expected ErrInvalidIVSize, got %v", n, err)
		}
	}
}

func TestAESCBC_InvalidCiphertextLength(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, AESBlockSize)
	for _, n := range []int{0, 1, 15, 17} {
		_, err := decryptAESCBC(key, iv, make([]byte, n))
		if !errors.Is(err, ErrInvalidCiphertextSize) {
			t.Errorf("ciphertext of %d bytes: expected ErrInvalidCiphertextSize, got %v", n, err)
		}
	}
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		block   []byte
		want    []byte
		wantErr bool
	}{
		{"full pad block", bytes.Repeat([]byte{16}, 16), []byte{}, false},
		{"one byte pad", append(bytes.Repeat([]byte{'a'}, 15), 1), bytes.Repeat([]byte{'a'}, 15), false},
		{"zero pad", append(bytes.Repeat([]byte{'a'}, 15), 0), nil, true},
		{"pad too large", append(bytes.Repeat([]byte{'a'}, 15), 17), nil, true},
		{"inconsistent pad", append(bytes.Repeat([]byte{'a'}, 14), 3, 2), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.block, AESBlockSize)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPadding) {
					t.Fatalf("expected ErrInvalidPadding, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("pkcs7Unpad() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("pkcs7Unpad() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestAESGCM_TamperedCiphertext(t *testing.T) {
	key := make([]byte, AESGCMKeySize)
	nonce := make([]byte, AESNonceSize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	sealed, err := sealAESGCM(key, nonce, []byte("sensitive data"))
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)/2] ^= 0xff

	_, err = openAESGCM(key, nonce, sealed)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestAESGCM_InvalidSizes(t *testing.T) {
	if _, err := sealAESGCM(make([]byte, 16), make([]byte, AESNonceSize), nil); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}
	if _, err := sealAESGCM(make([]byte, AESGCMKeySize), make([]byte, 16), nil); !errors.Is(err, ErrInvalidNonceSize) {
		t.Errorf("expected ErrInvalidNonceSize, got %v", err)
	}
}
