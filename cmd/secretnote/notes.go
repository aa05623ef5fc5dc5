package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	secretnote "github.com/secretnote/client-go"
)

func (a *app) runEncode(args []string) error {
	fs := a.flagSet("encode")
	to := fs.StringP("to", "t", "", "recipient identity or public block file")
	from := fs.StringP("from", "f", "", "sender identity file (default anonymous)")
	in := fs.StringP("in", "i", "", "plaintext file (default stdin)")
	out := fs.StringP("out", "o", "", "envelope file (default stdout)")
	trace := fs.Bool("trace", false, "dump intermediate values to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	recipient, err := a.loadIdentity(*to)
	if err != nil {
		return err
	}
	sender, err := a.loadSender(*from)
	if err != nil {
		return err
	}
	plaintext, err := a.readInput(*in)
	if err != nil {
		return err
	}

	var env secretnote.Envelope
	if *trace {
		t, err := a.codec.EncodeTrace(plaintext, recipient.PublicKey, sender)
		if err != nil {
			return err
		}
		if _, err := t.WriteTo(a.io.Stderr); err != nil {
			return err
		}
		env = t.Envelope
	} else if env, err = a.codec.Encode(plaintext, recipient.PublicKey, sender); err != nil {
		return err
	}
	return a.writeOutput(*out, []byte(env.String()+"\n"))
}

func (a *app) runDecode(args []string) error {
	fs := a.flagSet("decode")
	idPath := fs.String("id", "", "recipient identity file")
	in := fs.StringP("in", "i", "", "envelope file (default stdin)")
	out := fs.StringP("out", "o", "", "plaintext file (default stdout)")
	known := fs.StringSlice("known", nil, "known sender files")
	trusted := fs.StringSlice("trusted", nil, "trusted sender files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.loadIdentity(*idPath)
	if err != nil {
		return err
	}
	contacts, err := a.loadContacts(*known, *trusted)
	if err != nil {
		return err
	}
	data, err := a.readInput(*in)
	if err != nil {
		return err
	}
	env, err := secretnote.ParseEnvelope(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}

	res, err := a.codec.Decode(env, id.PrivateKey)
	if err != nil {
		return err
	}
	fmt.Fprint(a.io.Stderr, describe(secretnote.Assess(res, contacts), res))
	return a.writeOutput(*out, res.Plaintext)
}

func (a *app) runSend(args []string) error {
	fs := a.flagSet("send")
	to := fs.StringP("to", "t", "", "recipient identity or public block file")
	from := fs.StringP("from", "f", "", "sender identity file (default anonymous)")
	in := fs.StringP("in", "i", "", "plaintext file (default stdin)")
	url := fs.String("url", "", "relay URL (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	recipient, err := a.loadIdentity(*to)
	if err != nil {
		return err
	}
	var sender *secretnote.Identity
	if *from != "" {
		if sender, err = a.loadIdentity(*from); err != nil {
			return err
		}
	}
	plaintext, err := a.readInput(*in)
	if err != nil {
		return err
	}

	client, err := a.client(*url)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), a.settings.Client.Timeout)
	defer cancel()
	noteID, err := client.Send(ctx, recipient.Public(), plaintext, sender)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.io.Stdout, noteID)
	return nil
}

func (a *app) runReceive(args []string) error {
	fs := a.flagSet("receive")
	idPath := fs.String("id", "", "recipient identity file")
	known := fs.StringSlice("known", nil, "known sender files")
	trusted := fs.StringSlice("trusted", nil, "trusted sender files")
	watch := fs.BoolP("watch", "w", false, "keep polling for new notes")
	timeout := fs.Duration("timeout", 0, "stop watching after this long (default until interrupted)")
	url := fs.String("url", "", "relay URL (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.loadIdentity(*idPath)
	if err != nil {
		return err
	}
	contacts, err := a.loadContacts(*known, *trusted)
	if err != nil {
		return err
	}
	client, err := a.client(*url)
	if err != nil {
		return err
	}
	defer client.Close()

	p := &notePrinter{w: a.io.Stdout, contacts: contacts}

	if !*watch {
		ctx, cancel := context.WithTimeout(context.Background(), a.settings.Client.Timeout)
		defer cancel()
		notes, err := client.Notes(ctx, id)
		if err != nil {
			return err
		}
		for _, n := range notes {
			res, err := client.Open(n, id)
			p.print(&secretnote.ReceivedNote{Note: n, Result: res, Err: err})
		}
		return nil
	}

	ctx, stop := signalContext()
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	sub, err := client.Watch(ctx, id, p.print)
	if err != nil {
		return err
	}
	<-ctx.Done()
	sub.Unsubscribe()
	return nil
}

// loadSender returns the Sender for an identity file, or the anonymous
// Sender when path is empty.
func (a *app) loadSender(path string) (secretnote.Sender, error) {
	if path == "" {
		return secretnote.Sender{}, nil
	}
	id, err := a.loadIdentity(path)
	if err != nil {
		return secretnote.Sender{}, err
	}
	return id.Sender(), nil
}

func (a *app) client(url string) (*secretnote.Client, error) {
	c := a.settings.Client
	if url == "" {
		url = c.URL
	}
	return secretnote.New(
		secretnote.WithBaseURL(url),
		secretnote.WithTimeout(c.Timeout),
		secretnote.WithRetries(c.Retries),
		secretnote.WithLogger(a.logger),
		secretnote.WithCodec(a.codec),
		secretnote.WithPollingInitialInterval(c.PollInterval),
		secretnote.WithPollingMaxBackoff(c.MaxBackoff),
	)
}

// notePrinter writes received notes. Watch calls print from the polling
// goroutine.
type notePrinter struct {
	mu       sync.Mutex
	w        io.Writer
	contacts []*secretnote.Identity
}

func (p *notePrinter) print(n *secretnote.ReceivedNote) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "--- note %s (%s)\n", n.Note.ID, n.Note.CreatedAt.Format(time.RFC3339))
	if n.Err != nil {
		fmt.Fprintf(p.w, "error:     %v\n\n", n.Err)
		return
	}
	fmt.Fprint(p.w, describe(secretnote.Assess(n.Result, p.contacts), n.Result))
	fmt.Fprintf(p.w, "\n%s\n\n", n.Result.Plaintext)
}

// describe renders the trust assessment of a decoded note.
func describe(a secretnote.Assessment, res *secretnote.DecodedResult) string {
	sender := a.Sender.String()
	if a.Identity != nil {
		sender += " (" + a.Identity.Name + ")"
	}
	if res.HasPublicKey() {
		sender += " " + res.PublicKeyFingerprint.String()
	}
	return fmt.Sprintf("sender:    %s\nsignature: %s\n", sender, a.Signature)
}
