package crypto

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// NIST OIDs for the post-quantum algorithms. crypto/x509 does not know
// them yet, so their SPKI and PKCS #8 wrappers are built by hand.
var (
	oidMLKEM768 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 4, 2}
	oidMLDSA65  = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 18}
)

// marshalSPKI wraps a raw public key in SubjectPublicKeyInfo with an
// absent algorithm parameter.
func marshalSPKI(oid asn1.ObjectIdentifier, raw []byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oid)
		})
		b.AddASN1BitString(raw)
	})
	return b.Bytes()
}

// parseSPKI unwraps a SubjectPublicKeyInfo and checks its algorithm OID.
func parseSPKI(want asn1.ObjectIdentifier, der []byte) ([]byte, error) {
	var (
		s     = cryptobyte.String(der)
		spki  cryptobyte.String
		algID cryptobyte.String
		oid   asn1.ObjectIdentifier
		bits  asn1.BitString
	)
	if !s.ReadASN1(&spki, cbasn1.SEQUENCE) || !s.Empty() ||
		!spki.ReadASN1(&algID, cbasn1.SEQUENCE) ||
		!algID.ReadASN1ObjectIdentifier(&oid) ||
		!spki.ReadASN1BitString(&bits) || !spki.Empty() {
		return nil, fmt.Errorf("%w: malformed SubjectPublicKeyInfo", ErrInvalidKey)
	}
	if !oid.Equal(want) {
		return nil, fmt.Errorf("%w: algorithm %s, want %s", ErrAlgorithmMismatch, oid, want)
	}
	if !algID.Empty() {
		return nil, fmt.Errorf("%w: unexpected algorithm parameters", ErrInvalidKey)
	}
	if bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: public key is not byte aligned", ErrInvalidKey)
	}
	return bits.Bytes, nil
}

// marshalPKCS8 wraps a raw private key in a version 0 PrivateKeyInfo.
func marshalPKCS8(oid asn1.ObjectIdentifier, raw []byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oid)
		})
		b.AddASN1OctetString(raw)
	})
	return b.Bytes()
}

// parsePKCS8 unwraps a PrivateKeyInfo and checks its algorithm OID.
func parsePKCS8(want asn1.ObjectIdentifier, der []byte) ([]byte, error) {
	var (
		s       = cryptobyte.String(der)
		info    cryptobyte.String
		algID   cryptobyte.String
		version int64
		oid     asn1.ObjectIdentifier
		raw     cryptobyte.String
	)
	if !s.ReadASN1(&info, cbasn1.SEQUENCE) || !s.Empty() ||
		!info.ReadASN1Integer(&version) ||
		!info.ReadASN1(&algID, cbasn1.SEQUENCE) ||
		!algID.ReadASN1ObjectIdentifier(&oid) ||
		!info.ReadASN1(&raw, cbasn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: malformed PrivateKeyInfo", ErrInvalidKey)
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: PrivateKeyInfo version %d", ErrInvalidKey, version)
	}
	if !oid.Equal(want) {
		return nil, fmt.Errorf("%w: algorithm %s, want %s", ErrAlgorithmMismatch, oid, want)
	}
	return raw, nil
}
