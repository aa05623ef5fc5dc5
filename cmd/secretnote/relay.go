package main

import (
	"github.com/secretnote/client-go/internal/relay"
)

func (a *app) runRelay(args []string) error {
	fs := a.flagSet("relay")
	addr := fs.String("addr", "", "listen address (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := a.settings.Relay.Server()
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signalContext()
	defer stop()
	return relay.New(cfg, a.logger).ListenAndServe(ctx)
}
