package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/serve"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Content      string `arg:"" optional:"" default:"content" help:"Content directory to serve."`
	Addr         string `short:"a" default:":8080" help:"Listen address."`
	Output       string `short:"o" default:"_site" help:"Output directory for the generated site."`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable live reload injection."`
}

func (s *ServeCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return err
	}
	s.overlay(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := serve.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// overlay applies serve flags over the configuration, same precedence as the
// build command.
func (s *ServeCmd) overlay(cfg *config.Config) {
	def := config.Default()
	if s.Content != def.Content.Dir {
		cfg.Content.Dir = s.Content
	}
	if s.Output != def.Output.Dir {
		cfg.Output.Dir = s.Output
	}
	if s.Addr != def.Serve.Addr {
		cfg.Serve.Addr = s.Addr
	}
	if s.NoLiveReload {
		cfg.Serve.LiveReload = false
	}
}
