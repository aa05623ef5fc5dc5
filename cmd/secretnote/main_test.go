package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/secretnote/client-go/internal/relay"
)

var fixtureDir string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "secretnote-cli")
	if err != nil {
		panic(err)
	}
	fixtureDir = dir

	code := setupFixtures()
	if code == 0 {
		code = m.Run()
	}
	os.RemoveAll(dir)
	os.Exit(code)
}

// setupFixtures writes a config file and two identities, alice and bob.
func setupFixtures() int {
	if err := os.WriteFile(fixture("config.yaml"), []byte("log:\n  level: error\n"), 0o600); err != nil {
		return 1
	}
	for _, name := range []string{"alice", "bob"} {
		cfg := &Config{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: os.Stderr}
		if err := run(cliArgs("identity", "generate", "--name", name, "--out", fixture(name+".id")), cfg); err != nil {
			os.Stderr.WriteString("generate " + name + ": " + err.Error() + "\n")
			return 1
		}
	}
	return 0
}

func fixture(name string) string {
	return filepath.Join(fixtureDir, name)
}

func cliArgs(args ...string) []string {
	return append([]string{"secretnote", "--config", fixture("config.yaml"), "--env-file", fixture("none.env")}, args...)
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := &Config{Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}
	err := run(cliArgs(args...), cfg)
	return stdout.String(), stderr.String(), err
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stdin != os.Stdin {
		t.Error("DefaultConfig().Stdin should be os.Stdin")
	}
	if cfg.Stdout != os.Stdout {
		t.Error("DefaultConfig().Stdout should be os.Stdout")
	}
	if cfg.Stderr != os.Stderr {
		t.Error("DefaultConfig().Stderr should be os.Stderr")
	}
}

func TestRun_NoArgs(t *testing.T) {
	var stderr bytes.Buffer
	err := run([]string{"secretnote"}, &Config{Stdout: &bytes.Buffer{}, Stderr: &stderr})
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "usage: secretnote") {
		t.Error("usage was not printed")
	}
}

func TestRun_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "", "help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "identity generate") {
		t.Errorf("help output = %q", stdout)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	for _, args := range [][]string{{"frobnicate"}, {"identity"}, {"identity", "frobnicate"}} {
		if _, _, err := runCLI(t, "", args...); err == nil {
			t.Errorf("run(%v) should fail", args)
		}
	}
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("suite: rot13\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := run([]string{"secretnote", "--config", path, "help-me"}, &Config{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "rot13") {
		t.Errorf("run() error = %v, want unknown suite", err)
	}
}

func TestRun_IdentityShow(t *testing.T) {
	stdout, _, err := runCLI(t, "", "identity", "show", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name:        alice", "can decrypt: true", "can sign:    true"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_IdentityPublic(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alice.pub")
	if _, _, err := runCLI(t, "", "identity", "public", "--in", fixture("alice.id"), "--out", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "PUBLIC KEY BLOCK") || strings.Contains(string(data), "PRIVATE") {
		t.Errorf("public export = %q", data)
	}

	stdout, _, err := runCLI(t, "", "identity", "show", out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "can decrypt: false") {
		t.Errorf("public identity should not decrypt:\n%s", stdout)
	}
}

func TestRun_IdentityMissingFile(t *testing.T) {
	if _, _, err := runCLI(t, "", "identity", "show"); !errors.Is(err, errUsage) {
		t.Errorf("error = %v, want errUsage", err)
	}
	if _, _, err := runCLI(t, "", "identity", "show", fixture("nobody.id")); err == nil {
		t.Error("missing identity file should fail")
	}
}

func TestRun_EncodeDecode(t *testing.T) {
	env, stderr, err := runCLI(t, "hello bob", "encode", "--to", fixture("bob.id"), "--from", fixture("alice.id"), "--trace")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "session key:") || !strings.Contains(stderr, "[length: ") {
		t.Errorf("trace missing from stderr:\n%s", stderr)
	}

	plain, stderr, err := runCLI(t, env, "decode", "--id", fixture("bob.id"), "--trusted", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}
	if plain != "hello bob" {
		t.Errorf("plaintext = %q", plain)
	}
	if !strings.Contains(stderr, "sender:    trusted (alice)") || !strings.Contains(stderr, "signature: valid") {
		t.Errorf("assessment = %q", stderr)
	}
}

func TestRun_DecodeKnownFullIdentityIsUntrusted(t *testing.T) {
	env, _, err := runCLI(t, "hello bob", "encode", "--to", fixture("bob.id"), "--from", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, env, "decode", "--id", fixture("bob.id"), "--known", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "sender:    untrusted (alice)") {
		t.Errorf("assessment = %q", stderr)
	}
}

func TestRun_EncodeAnonymous(t *testing.T) {
	env, _, err := runCLI(t, "boo", "encode", "--to", fixture("bob.id"))
	if err != nil {
		t.Fatal(err)
	}
	_, stderr, err := runCLI(t, env, "decode", "--id", fixture("bob.id"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "sender:    anonymous") || !strings.Contains(stderr, "signature: missing") {
		t.Errorf("assessment = %q", stderr)
	}
}

func TestRun_DecodeWrongIdentity(t *testing.T) {
	env, _, err := runCLI(t, "for bob", "encode", "--to", fixture("bob.id"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, env, "decode", "--id", fixture("alice.id")); err == nil {
		t.Error("decoding with the wrong identity should fail")
	}
	if _, _, err := runCLI(t, "%%%", "decode", "--id", fixture("bob.id")); err == nil {
		t.Error("decoding garbage should fail")
	}
}

func TestRun_SendReceive(t *testing.T) {
	srv := relay.New(relay.Config{FetchInterval: time.Microsecond, FetchBurst: 100}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	noteID, _, err := runCLI(t, "over the wire", "send", "--url", ts.URL, "--to", fixture("bob.id"), "--from", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}
	noteID = strings.TrimSpace(noteID)
	if len(noteID) != 64 {
		t.Errorf("note id = %q", noteID)
	}

	stdout, _, err := runCLI(t, "", "receive", "--url", ts.URL, "--id", fixture("bob.id"), "--known", fixture("alice.id"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"--- note " + noteID, "over the wire", "signature: valid"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("receive output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, "", "receive", "--url", ts.URL, "--id", fixture("bob.id"), "--watch", "--timeout", "300ms")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "over the wire") {
		t.Errorf("watch output missing note:\n%s", stdout)
	}
}

func TestRun_Relay(t *testing.T) {
	original := signalContext
	defer func() { signalContext = original }()
	signalContext = func() (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)
		return ctx, cancel
	}

	if _, _, err := runCLI(t, "", "relay", "--addr", "127.0.0.1:0"); err != nil {
		t.Errorf("relay error = %v", err)
	}
}
