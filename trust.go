package secretnote

// SenderStatus classifies who a note claims to be from.
type SenderStatus int

const (
	// SenderAnonymous means the note disclosed no public key.
	SenderAnonymous SenderStatus = iota
	// SenderUnknown means the disclosed key matches no known identity.
	SenderUnknown
	// SenderUntrusted means the key belongs to a known, untrusted identity.
	SenderUntrusted
	// SenderTrusted means the key belongs to a known, trusted identity.
	SenderTrusted
)

func (s SenderStatus) String() string {
	switch s {
	case SenderAnonymous:
		return "anonymous"
	case SenderUnknown:
		return "unknown"
	case SenderUntrusted:
		return "untrusted"
	case SenderTrusted:
		return "trusted"
	}
	return "invalid"
}

// SignatureStatus classifies a note's signature.
type SignatureStatus int

const (
	// SignatureMissing means the note was not signed.
	SignatureMissing SignatureStatus = iota
	// SignatureInvalid means the signature did not verify.
	SignatureInvalid
	// SignatureUnknownSigner means the signature verified but the sender
	// is anonymous or unknown, so the verify key cannot be checked.
	SignatureUnknownSigner
	// SignatureKeyNotCurrent means the signature verified with a key other
	// than the one on record for the sender.
	SignatureKeyNotCurrent
	// SignatureValid means the signature verified with the sender's
	// recorded verify key.
	SignatureValid
)

func (s SignatureStatus) String() string {
	switch s {
	case SignatureMissing:
		return "missing"
	case SignatureInvalid:
		return "invalid"
	case SignatureUnknownSigner:
		return "valid, unknown signer"
	case SignatureKeyNotCurrent:
		return "valid, key not current"
	case SignatureValid:
		return "valid"
	}
	return "invalid status"
}

// Assessment is the trust verdict for a decoded note.
type Assessment struct {
	Sender    SenderStatus
	Signature SignatureStatus
	// Identity is the known identity matching the sender's public key.
	Identity *Identity
}

// Assess matches res against known identities by public key fingerprint
// and grades the sender and signature.
func Assess(res *DecodedResult, known []*Identity) Assessment {
	var a Assessment

	if res.HasPublicKey() {
		for _, id := range known {
			if id != nil && id.PublicKeyFingerprint.Equal(res.PublicKeyFingerprint) {
				a.Identity = id
				break
			}
		}
	}

	switch {
	case a.Identity != nil && a.Identity.Trusted:
		a.Sender = SenderTrusted
	case a.Identity != nil:
		a.Sender = SenderUntrusted
	case res.HasPublicKey():
		a.Sender = SenderUnknown
	default:
		a.Sender = SenderAnonymous
	}

	switch {
	case !res.Signed:
		a.Signature = SignatureMissing
	case !res.SignatureValid:
		a.Signature = SignatureInvalid
	case a.Identity == nil:
		a.Signature = SignatureUnknownSigner
	case a.Identity.VerifyKeyFingerprint.Equal(res.VerifyKeyFingerprint):
		a.Signature = SignatureValid
	default:
		a.Signature = SignatureKeyNotCurrent
	}

	return a
}
