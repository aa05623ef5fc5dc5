package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestSPKI_RoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}
	der, err := marshalSPKI(oidMLDSA65, raw)
	if err != nil {
		t.Fatal(err)
	}

	got, err := parseSPKI(oidMLDSA65, der)
	if err != nil {
		t.Fatalf("parseSPKI() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("parseSPKI() = %x, want %x", got, raw)
	}

	if _, err := parseSPKI(oidMLKEM768, der); !errors.Is(err, ErrAlgorithmMismatch) {
		t.Errorf("expected ErrAlgorithmMismatch, got %v", err)
	}
	if _, err := parseSPKI(oidMLDSA65, append(der, 0x00)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("trailing data: expected ErrInvalidKey, got %v", err)
	}
}

func TestPKCS8_RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 64)
	der, err := marshalPKCS8(oidMLKEM768, raw)
	if err != nil {
		t.Fatal(err)
	}

	got, err := parsePKCS8(oidMLKEM768, der)
	if err != nil {
		t.Fatalf("parsePKCS8() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("parsePKCS8() = %x, want %x", got, raw)
	}

	if _, err := parsePKCS8(oidMLKEM768, der[:len(der)-1]); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("truncated: expected ErrInvalidKey, got %v", err)
	}
}
