package main

import "fmt"

func (a *app) runIdentity(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: identity generate|show|public", errUsage)
	}
	switch args[0] {
	case "generate":
		return a.identityGenerate(args[1:])
	case "show":
		return a.identityShow(args[1:])
	case "public":
		return a.identityPublic(args[1:])
	default:
		return fmt.Errorf("unknown identity command: %s", args[0])
	}
}

func (a *app) identityGenerate(args []string) error {
	fs := a.flagSet("identity generate")
	name := fs.StringP("name", "n", "me", "identity name")
	out := fs.StringP("out", "o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.codec.GenerateIdentity(*name, true)
	if err != nil {
		return err
	}
	text, err := a.codec.ExportIdentity(id)
	if err != nil {
		return err
	}
	a.logger.WithField("fingerprint", id.PublicKeyFingerprint.String()).Info("identity generated")
	return a.writeOutput(*out, []byte(text))
}

func (a *app) identityShow(args []string) error {
	fs := a.flagSet("identity show")
	in := fs.StringP("in", "i", "", "identity file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}

	id, err := a.loadIdentity(*in)
	if err != nil {
		return err
	}
	w := a.io.Stdout
	fmt.Fprintf(w, "name:        %s\n", id.Name)
	fmt.Fprintf(w, "public key:  %s\n", id.PublicKeyFingerprint)
	fmt.Fprintf(w, "             %s\n", id.PublicKeyFingerprint.Base58())
	if len(id.VerifyKeyFingerprint) > 0 {
		fmt.Fprintf(w, "verify key:  %s\n", id.VerifyKeyFingerprint)
	} else {
		fmt.Fprintln(w, "verify key:  none")
	}
	fmt.Fprintf(w, "can decrypt: %t\n", id.CanDecrypt())
	fmt.Fprintf(w, "can sign:    %t\n", id.CanSign())
	return nil
}

func (a *app) identityPublic(args []string) error {
	fs := a.flagSet("identity public")
	in := fs.StringP("in", "i", "", "identity file")
	out := fs.StringP("out", "o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}

	id, err := a.loadIdentity(*in)
	if err != nil {
		return err
	}
	text, err := a.codec.ExportIdentity(id.Public())
	if err != nil {
		return err
	}
	return a.writeOutput(*out, []byte(text+"\n"))
}
