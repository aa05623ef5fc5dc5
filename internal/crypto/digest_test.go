package crypto

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestEngine_Digest(t *testing.T) {
	e := New()

	tests := []struct {
		alg  Algorithm
		want string
	}{
		{SHA1, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA384, "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{SHA512, "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
		{BLAKE3, "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			got, err := e.Digest(tt.alg, []byte("abc"))
			if err != nil {
				t.Fatalf("Digest() error = %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("Digest() = %x, want %s", got, tt.want)
			}
			if len(got) != DigestSize(tt.alg) {
				t.Errorf("len = %d, DigestSize = %d", len(got), DigestSize(tt.alg))
			}
		})
	}
}

func TestEngine_Digest_Unsupported(t *testing.T) {
	_, err := New().Digest(AESCBC, []byte("abc"))
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}
