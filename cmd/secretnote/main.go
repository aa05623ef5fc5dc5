// Command secretnote manages identities, seals and opens notes, talks to a
// note relay and runs one.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	secretnote "github.com/secretnote/client-go"
	"github.com/secretnote/client-go/internal/config"
)

const usage = `usage: secretnote [--config FILE] [--env-file FILE] <command> [flags]

commands:
  identity generate   create a new identity
  identity show       print the fingerprints of an identity
  identity public     print the public block of an identity
  encode              seal input for a recipient
  decode              open an envelope
  send                seal input and post it to the relay
  receive             fetch and open notes from the relay
  relay               run the note relay
`

var errUsage = errors.New("invalid usage")

// Config holds the streams a run reads from and writes to.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// signalContext returns the context long-running commands stop on.
var signalContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// app is the state shared by every command of one run.
type app struct {
	io       *Config
	settings config.Config
	logger   *logrus.Logger
	codec    *secretnote.Codec
}

func run(args []string, cfg *Config) error {
	if len(args) == 0 {
		args = []string{"secretnote"}
	}

	global := pflag.NewFlagSet("secretnote", pflag.ContinueOnError)
	global.SetOutput(cfg.Stderr)
	global.SetInterspersed(false)
	global.Usage = func() { fmt.Fprint(cfg.Stderr, usage) }
	configPath := global.String("config", "", "YAML config file")
	envFile := global.String("env-file", ".env", "environment file loaded before the config")
	if err := global.Parse(args[1:]); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errUsage
	}
	if rest[0] == "help" {
		fmt.Fprint(cfg.Stdout, usage)
		return nil
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(settings.Log, cfg.Stderr)
	if err != nil {
		return err
	}
	suite, err := secretnote.SuiteByName(settings.Suite)
	if err != nil {
		return err
	}
	codec, err := secretnote.NewCodec(secretnote.WithSuite(suite), secretnote.WithCodecLogger(logger))
	if err != nil {
		return err
	}

	a := &app{io: cfg, settings: settings, logger: logger, codec: codec}

	switch rest[0] {
	case "identity":
		return a.runIdentity(rest[1:])
	case "encode":
		return a.runEncode(rest[1:])
	case "decode":
		return a.runDecode(rest[1:])
	case "send":
		return a.runSend(rest[1:])
	case "receive":
		return a.runReceive(rest[1:])
	case "relay":
		return a.runRelay(rest[1:])
	default:
		global.Usage()
		return fmt.Errorf("unknown command: %s", rest[0])
	}
}

func (a *app) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.io.Stderr)
	return fs
}

// readInput reads path, or stdin when path is empty or "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(a.io.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout when path is empty or "-".
// Files are created readable by the owner only.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.io.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// loadIdentity imports an armored identity file. The file name without
// extension becomes the identity name.
func (a *app) loadIdentity(path string) (*secretnote.Identity, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: identity file required", errUsage)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id, err := a.codec.ImportIdentity(name, string(data), true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return id, nil
}

// loadContacts imports known sender files. Files listed in trusted are
// marked trusted and all others untrusted, whatever blocks they contain.
func (a *app) loadContacts(known, trusted []string) ([]*secretnote.Identity, error) {
	contacts := make([]*secretnote.Identity, 0, len(known)+len(trusted))
	for _, group := range []struct {
		paths   []string
		trusted bool
	}{{known, false}, {trusted, true}} {
		for _, path := range group.paths {
			id, err := a.loadIdentity(path)
			if err != nil {
				return nil, err
			}
			// Full identity files import as trusted; the flag decides.
			id.Trusted = group.trusted
			contacts = append(contacts, id)
		}
	}
	return contacts, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
