// Package secretnote implements SecretNote, a hybrid envelope format for
// short end-to-end encrypted notes, and a client for the note relay.
//
// A note is sealed with a fresh AES-CBC session key, which is in turn
// encrypted to the recipient's public key. The sender may sign the
// plaintext and may disclose its own public key so the recipient can
// reply; both are optional. Senders and recipients are addressed by the
// fingerprint of their public key.
//
// Sealing and opening notes locally:
//
//	codec, err := secretnote.NewCodec()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	alice, _ := codec.GenerateIdentity("alice", true)
//	bob, _ := codec.GenerateIdentity("bob", true)
//
//	env, err := codec.Encode([]byte("hello"), bob.PublicKey, alice.Sender())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := codec.Decode(env, bob.PrivateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	verdict := secretnote.Assess(res, []*secretnote.Identity{alice.Public()})
//	fmt.Println(string(res.Plaintext), verdict.Signature)
//
// Through a relay:
//
//	client, err := secretnote.New(secretnote.WithBaseURL("https://relay.example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.Send(ctx, bob.Public(), []byte("hello"), alice); err != nil {
//	    log.Fatal(err)
//	}
//
//	note, err := client.WaitForNote(ctx, bob)
//
// Identities are exchanged as armored text blocks, see
// [Codec.ExportIdentity] and [Codec.ImportIdentity].
package secretnote
