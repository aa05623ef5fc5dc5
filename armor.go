package secretnote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/secretnote/client-go/internal/crypto"
	"github.com/secretnote/client-go/internal/framing"
)

// BlockType names an armored identity block.
type BlockType string

const (
	// PublicBlock carries pack(publicKeySPKI, verifyKeySPKI).
	PublicBlock BlockType = "PUBLIC"
	// PrivateBlock carries pack(privateKeyPKCS8, signingKeyPKCS8).
	PrivateBlock BlockType = "PRIVATE"
)

// ArmorVersion is written on the line after every block header.
const ArmorVersion = "SNPG v1.0.0.0"

func beginMarker(t BlockType) string {
	return "-- BEGIN SECRETNOTE " + string(t) + " KEY BLOCK --"
}

func endMarker(t BlockType) string {
	return "-- END SECRETNOTE " + string(t) + " KEY BLOCK --"
}

const versionLine = "-- Ver: " + ArmorVersion + " --"

// Armor wraps data in a text block of type t.
func Armor(t BlockType, data []byte) string {
	var b strings.Builder
	b.WriteString(beginMarker(t))
	b.WriteByte('\n')
	b.WriteString(versionLine)
	b.WriteByte('\n')
	b.WriteString(crypto.ToBase64(data))
	b.WriteByte('\n')
	b.WriteString(endMarker(t))
	return b.String()
}

// ParseArmor extracts the first block of type t from text. It returns
// (nil, nil) when text holds no such block.
func ParseArmor(text string, t BlockType) ([]byte, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	begin := strings.Index(text, beginMarker(t))
	if begin < 0 {
		return nil, nil
	}
	rest := text[begin+len(beginMarker(t)):]
	end := strings.Index(rest, endMarker(t))
	if end < 0 {
		return nil, fmt.Errorf("%w: %s block has no end marker", ErrInvalidArmor, strings.ToLower(string(t)))
	}
	body := strings.TrimSpace(rest[:end])

	header, payload, _ := strings.Cut(body, "\n")
	if strings.TrimSpace(header) != versionLine {
		return nil, fmt.Errorf("%w: %s block has unsupported version line %q", ErrInvalidArmor, strings.ToLower(string(t)), header)
	}

	data, err := crypto.FromBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s block: %v", ErrInvalidArmor, strings.ToLower(string(t)), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s block is empty", ErrInvalidArmor, strings.ToLower(string(t)))
	}
	return data, nil
}

// ExportIdentity returns id in armored form: the public block, followed by
// a blank line and the private block when id's private keys are
// extractable. Private keys that cannot be exported are left out.
func (c *Codec) ExportIdentity(id *Identity) (string, error) {
	if id == nil || id.PublicKey == nil {
		return "", keyError("export identity", fmt.Errorf("%w: identity has no public key", crypto.ErrInvalidKey))
	}

	pub, err := c.provider.ExportKey(crypto.FormatSPKI, id.PublicKey)
	if err != nil {
		return "", keyError("export public key", err)
	}
	publicSegs := [][]byte{pub}
	if id.VerifyKey != nil {
		verify, err := c.provider.ExportKey(crypto.FormatSPKI, id.VerifyKey)
		if err != nil {
			return "", keyError("export verify key", err)
		}
		publicSegs = append(publicSegs, verify)
	}
	publicData, err := framing.Pack(publicSegs...)
	if err != nil {
		return "", framingError("public block", err)
	}
	out := Armor(PublicBlock, publicData)

	privateSegs, err := c.exportPrivate(id)
	if err != nil {
		return "", err
	}
	if len(privateSegs) > 0 {
		privateData, err := framing.Pack(privateSegs...)
		if err != nil {
			return "", framingError("private block", err)
		}
		out += "\n\n" + Armor(PrivateBlock, privateData) + "\n"
	}
	return out, nil
}

// exportPrivate returns the PKCS #8 encodings of id's private keys, or
// nothing when the decryption key is missing or not extractable.
func (c *Codec) exportPrivate(id *Identity) ([][]byte, error) {
	if id.PrivateKey == nil {
		return nil, nil
	}
	priv, err := c.provider.ExportKey(crypto.FormatPKCS8, id.PrivateKey)
	if errors.Is(err, crypto.ErrNotExtractable) {
		return nil, nil
	}
	if err != nil {
		return nil, keyError("export private key", err)
	}
	segs := [][]byte{priv}

	if id.SigningKey != nil {
		signing, err := c.provider.ExportKey(crypto.FormatPKCS8, id.SigningKey)
		switch {
		case errors.Is(err, crypto.ErrNotExtractable):
		case err != nil:
			return nil, keyError("export signing key", err)
		default:
			segs = append(segs, signing)
		}
	}
	return segs, nil
}

// ImportIdentity reads an armored identity. The public block is required.
// With a private block the identity is local and trusted; without one it is
// an untrusted contact. extractable applies to the imported private keys.
func (c *Codec) ImportIdentity(name, text string, extractable bool) (*Identity, error) {
	publicData, err := ParseArmor(text, PublicBlock)
	if err != nil {
		return nil, err
	}
	if publicData == nil {
		return nil, fmt.Errorf("%w: no public key block", ErrInvalidArmor)
	}
	privateData, err := ParseArmor(text, PrivateBlock)
	if err != nil {
		return nil, err
	}

	id := &Identity{Name: name}

	publicSegs, err := unpackBlock(publicData, PublicBlock)
	if err != nil {
		return nil, err
	}
	id.PublicKey, err = c.provider.ImportKey(crypto.FormatSPKI, publicSegs[0], c.suite.Asymmetric, true, crypto.UsageEncrypt)
	if err != nil {
		return nil, keyError("import public key", err)
	}
	if len(publicSegs) > 1 && len(publicSegs[1]) > 0 {
		id.VerifyKey, err = c.provider.ImportKey(crypto.FormatSPKI, publicSegs[1], c.suite.Signing, true, crypto.UsageVerify)
		if err != nil {
			return nil, keyError("import verify key", err)
		}
	}

	if privateData != nil {
		privateSegs, err := unpackBlock(privateData, PrivateBlock)
		if err != nil {
			return nil, err
		}
		id.PrivateKey, err = c.provider.ImportKey(crypto.FormatPKCS8, privateSegs[0], c.suite.Asymmetric, extractable, crypto.UsageDecrypt)
		if err != nil {
			return nil, keyError("import private key", err)
		}
		if len(privateSegs) > 1 && len(privateSegs[1]) > 0 {
			id.SigningKey, err = c.provider.ImportKey(crypto.FormatPKCS8, privateSegs[1], c.suite.Signing, extractable, crypto.UsageSign)
			if err != nil {
				return nil, keyError("import signing key", err)
			}
		}
		id.Local = true
		id.Trusted = true
	}

	if err := c.fingerprintIdentity(id); err != nil {
		return nil, err
	}
	return id, nil
}

// unpackBlock splits block data into one or two key segments, the first
// of which must be non-empty.
func unpackBlock(data []byte, t BlockType) ([][]byte, error) {
	segs, err := framing.Unpack(data)
	if err != nil {
		return nil, framingError(strings.ToLower(string(t))+" block", err)
	}
	if len(segs) == 0 || len(segs) > 2 {
		return nil, validationError(strings.ToLower(string(t))+" block", fmt.Sprintf("expected 1 or 2 key segments, got %d", len(segs)))
	}
	if len(segs[0]) == 0 {
		return nil, validationError(strings.ToLower(string(t))+" block", "first key segment is empty")
	}
	return segs, nil
}
