package secretnote

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/secretnote/client-go/internal/crypto"
	"github.com/secretnote/client-go/internal/framing"
)

func TestArmor_Format(t *testing.T) {
	got := Armor(PublicBlock, []byte{0x00, 0x01, 0xff})
	want := "-- BEGIN SECRETNOTE PUBLIC KEY BLOCK --\n" +
		"-- Ver: SNPG v1.0.0.0 --\n" +
		"AAH/\n" +
		"-- END SECRETNOTE PUBLIC KEY BLOCK --"
	if got != want {
		t.Errorf("Armor() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseArmor(t *testing.T) {
	data := []byte("identity bytes")
	text := "some preamble\r\n" + strings.ReplaceAll(Armor(PrivateBlock, data), "\n", "\r\n") + "\r\ntrailer"

	got, err := ParseArmor(text, PrivateBlock)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ParseArmor() = %q, want %q", got, data)
	}

	got, err = ParseArmor(text, PublicBlock)
	if err != nil || got != nil {
		t.Errorf("ParseArmor(missing block) = %v, %v, want nil, nil", got, err)
	}
}

func TestParseArmor_Errors(t *testing.T) {
	begin := "-- BEGIN SECRETNOTE PUBLIC KEY BLOCK --\n"
	end := "\n-- END SECRETNOTE PUBLIC KEY BLOCK --"

	tests := []struct {
		name string
		text string
	}{
		{"no end marker", begin + "-- Ver: SNPG v1.0.0.0 --\nAAH/"},
		{"wrong version", begin + "-- Ver: SNPG v2.0.0.0 --\nAAH/" + end},
		{"missing version", begin + "AAH/" + end},
		{"bad base64", begin + "-- Ver: SNPG v1.0.0.0 --\n!!!" + end},
		{"empty body", begin + "-- Ver: SNPG v1.0.0.0 --\n" + end},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArmor(tt.text, PublicBlock); !errors.Is(err, ErrInvalidArmor) {
				t.Errorf("ParseArmor() error = %v, want ErrInvalidArmor", err)
			}
		})
	}
}

func TestExportImportIdentity_Full(t *testing.T) {
	c, alice, _ := testIdentities(t)

	text, err := c.ExportIdentity(alice)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "-- BEGIN SECRETNOTE PUBLIC KEY BLOCK --\n-- Ver: SNPG v1.0.0.0 --\n") {
		t.Errorf("export does not start with the public block:\n%s", text)
	}
	if !strings.Contains(text, "-- END SECRETNOTE PUBLIC KEY BLOCK --\n\n-- BEGIN SECRETNOTE PRIVATE KEY BLOCK --") {
		t.Error("public and private blocks are not separated by a blank line")
	}

	imported, err := c.ImportIdentity("alice again", text, true)
	if err != nil {
		t.Fatal(err)
	}
	if !imported.Local || !imported.Trusted {
		t.Errorf("Local = %v, Trusted = %v, want true, true", imported.Local, imported.Trusted)
	}
	if imported.Name != "alice again" {
		t.Errorf("Name = %q", imported.Name)
	}
	if !imported.PublicKeyFingerprint.Equal(alice.PublicKeyFingerprint) {
		t.Error("PublicKeyFingerprint changed across export/import")
	}
	if !imported.VerifyKeyFingerprint.Equal(alice.VerifyKeyFingerprint) {
		t.Error("VerifyKeyFingerprint changed across export/import")
	}
	if !imported.CanDecrypt() || !imported.CanSign() {
		t.Fatal("imported identity lost its private keys")
	}

	// The imported keys still work with notes sealed for the original.
	env, err := c.Encode([]byte("after import"), alice.PublicKey, imported.Sender())
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Decode(env, imported.PrivateKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Plaintext) != "after import" || !res.SignatureValid {
		t.Errorf("Plaintext = %q, SignatureValid = %v", res.Plaintext, res.SignatureValid)
	}
}

func TestExportImportIdentity_PublicOnly(t *testing.T) {
	c, alice, _ := testIdentities(t)

	text, err := c.ExportIdentity(alice.Public())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "PRIVATE") {
		t.Error("public export contains a private block")
	}

	contact, err := c.ImportIdentity("alice", text, false)
	if err != nil {
		t.Fatal(err)
	}
	if contact.Local || contact.Trusted {
		t.Errorf("Local = %v, Trusted = %v, want false, false", contact.Local, contact.Trusted)
	}
	if contact.CanDecrypt() || contact.CanSign() {
		t.Error("contact holds private keys")
	}
	if !contact.PublicKeyFingerprint.Equal(alice.PublicKeyFingerprint) {
		t.Error("PublicKeyFingerprint mismatch")
	}
	if contact.VerifyKey == nil {
		t.Error("verify key not imported")
	}
}

func TestExportIdentity_NonExtractable(t *testing.T) {
	c, _, _ := testIdentities(t)

	id, err := c.GenerateIdentity("sealed", false)
	if err != nil {
		t.Fatal(err)
	}
	text, err := c.ExportIdentity(id)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "PRIVATE") {
		t.Error("non-extractable private keys were exported")
	}

	if _, err := c.ExportIdentity(nil); !errors.Is(err, ErrKey) {
		t.Errorf("ExportIdentity(nil) error = %v, want ErrKey", err)
	}
}

func TestImportIdentity_PublicKeyWithoutVerifyKey(t *testing.T) {
	c, alice, _ := testIdentities(t)

	pub, _ := c.Provider().ExportKey(crypto.FormatSPKI, alice.PublicKey)
	data, _ := framing.Pack(pub)

	id, err := c.ImportIdentity("enc only", Armor(PublicBlock, data), false)
	if err != nil {
		t.Fatal(err)
	}
	if id.VerifyKey != nil || id.VerifyKeyFingerprint != nil {
		t.Error("verify key set for a block without one")
	}
}

func TestImportIdentity_Errors(t *testing.T) {
	c, alice, _ := testIdentities(t)

	pub, _ := c.Provider().ExportKey(crypto.FormatSPKI, alice.PublicKey)
	verify, _ := c.Provider().ExportKey(crypto.FormatSPKI, alice.VerifyKey)
	valid, _ := framing.Pack(pub, verify)
	three, _ := framing.Pack(pub, verify, pub)
	emptyFirst, _ := framing.Pack(nil, verify)
	junk, _ := framing.Pack([]byte("junk"))

	tests := []struct {
		name string
		text string
		want error
	}{
		{"no blocks", "nothing here", ErrInvalidArmor},
		{"private only", Armor(PrivateBlock, []byte("x")), ErrInvalidArmor},
		{"truncated block", Armor(PublicBlock, []byte{0x00, 0x09, 0x01}), ErrFraming},
		{"three segments", Armor(PublicBlock, three), ErrValidation},
		{"empty public key", Armor(PublicBlock, emptyFirst), ErrValidation},
		{"garbage public key", Armor(PublicBlock, junk), ErrKey},
		{"truncated private block", Armor(PublicBlock, valid) + "\n\n" + Armor(PrivateBlock, []byte("x")), ErrFraming},
		{"garbage private key", Armor(PublicBlock, valid) + "\n\n" + Armor(PrivateBlock, junk), ErrKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.ImportIdentity("x", tt.text, false); !errors.Is(err, tt.want) {
				t.Errorf("ImportIdentity() error = %v, want %v", err, tt.want)
			}
		})
	}
}
