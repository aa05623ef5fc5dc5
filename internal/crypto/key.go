package crypto

import "slices"

// Format is a key serialization format.
type Format string

const (
	// FormatSPKI is DER SubjectPublicKeyInfo, used for public keys.
	FormatSPKI Format = "spki"
	// FormatPKCS8 is DER PKCS #8 PrivateKeyInfo, used for private keys.
	FormatPKCS8 Format = "pkcs8"
	// FormatRaw is the bare key bytes, used for symmetric keys.
	FormatRaw Format = "raw"
)

// KeyType distinguishes the halves of a key pair from symmetric keys.
type KeyType string

const (
	KeyTypePublic  KeyType = "public"
	KeyTypePrivate KeyType = "private"
	KeyTypeSecret  KeyType = "secret"
)

// KeyUsage is an operation a key may be used for.
type KeyUsage string

const (
	UsageEncrypt KeyUsage = "encrypt"
	UsageDecrypt KeyUsage = "decrypt"
	UsageSign    KeyUsage = "sign"
	UsageVerify  KeyUsage = "verify"
)

// Key is an opaque handle to key material. Keys are immutable once created
// and safe to share between goroutines.
type Key struct {
	alg         Algorithm
	typ         KeyType
	extractable bool
	usages      []KeyUsage
	material    any
}

// Algorithm returns the algorithm the key is bound to.
func (k *Key) Algorithm() Algorithm { return k.alg }

// Type returns whether the key is public, private or secret.
func (k *Key) Type() KeyType { return k.typ }

// Extractable reports whether ExportKey may serialize the key.
func (k *Key) Extractable() bool { return k.extractable }

// Usages returns a copy of the key's permitted usages.
func (k *Key) Usages() []KeyUsage { return slices.Clone(k.usages) }

// HasUsage reports whether u is among the key's usages.
func (k *Key) HasUsage(u KeyUsage) bool { return slices.Contains(k.usages, u) }

// KeyPair holds the two halves of an asymmetric key.
type KeyPair struct {
	PublicKey  *Key
	PrivateKey *Key
}

// allowedUsages lists the usages valid for each half of an algorithm's keys.
func allowedUsages(alg Algorithm, typ KeyType) []KeyUsage {
	switch {
	case alg == AESCBC:
		return []KeyUsage{UsageEncrypt, UsageDecrypt}
	case isAsymmetric(alg) && typ == KeyTypePublic:
		return []KeyUsage{UsageEncrypt}
	case isAsymmetric(alg) && typ == KeyTypePrivate:
		return []KeyUsage{UsageDecrypt}
	case isSigning(alg) && typ == KeyTypePublic:
		return []KeyUsage{UsageVerify}
	case isSigning(alg) && typ == KeyTypePrivate:
		return []KeyUsage{UsageSign}
	}
	return nil
}

// checkUsages rejects any requested usage the algorithm cannot support.
// An empty request is accepted and means every usage the algorithm allows.
func checkUsages(alg Algorithm, usages []KeyUsage) error {
	var all []KeyUsage
	if alg == AESCBC {
		all = allowedUsages(alg, KeyTypeSecret)
	} else {
		all = append(allowedUsages(alg, KeyTypePublic), allowedUsages(alg, KeyTypePrivate)...)
	}
	for _, u := range usages {
		if !slices.Contains(all, u) {
			return ErrKeyUsage
		}
	}
	return nil
}

// effectiveUsages narrows requested to what a key of typ may do.
func effectiveUsages(alg Algorithm, typ KeyType, requested []KeyUsage) []KeyUsage {
	allowed := allowedUsages(alg, typ)
	if len(requested) == 0 {
		return allowed
	}
	var out []KeyUsage
	for _, u := range allowed {
		if slices.Contains(requested, u) {
			out = append(out, u)
		}
	}
	return out
}

func newKey(alg Algorithm, typ KeyType, extractable bool, usages []KeyUsage, material any) *Key {
	if typ == KeyTypePublic {
		extractable = true
	}
	return &Key{
		alg:         alg,
		typ:         typ,
		extractable: extractable,
		usages:      effectiveUsages(alg, typ, usages),
		material:    material,
	}
}

// require checks that k can run op under alg.
func (k *Key) require(alg Algorithm, typ KeyType, op KeyUsage) error {
	if k == nil {
		return ErrInvalidKey
	}
	if k.alg != alg {
		return ErrAlgorithmMismatch
	}
	if k.typ != typ || !k.HasUsage(op) {
		return ErrKeyUsage
	}
	return nil
}
