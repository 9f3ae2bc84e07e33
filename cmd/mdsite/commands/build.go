package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Content   string `arg:"" optional:"" default:"content" help:"Content directory to build."`
	Output    string `short:"o" default:"_site" help:"Output directory for the generated site."`
	Style     string `default:"style.css" help:"Style sheet, relative to the content directory unless absolute."`
	Header    string `default:"header.md" help:"Header markdown, relative to the content directory unless absolute."`
	Footer    string `default:"footer.md" help:"Footer markdown, relative to the content directory unless absolute."`
	KeepGoing bool   `name:"keep-going" help:"Continue past per-document failures."`
	Check     bool   `help:"Verify internal links after the build."`
}

func (b *BuildCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return err
	}
	b.overlay(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	builder := site.NewBuilder(cfg, nil)
	report, buildErr := builder.Build(ctx)

	if persistErr := report.Persist(config.ExpandPath(cfg.Output.Dir)); persistErr != nil {
		slog.Warn("Failed to persist build report", logfields.Error(persistErr))
	}

	fmt.Println(report.Summary())
	return buildErr
}

// overlay applies build flags over the configuration. A flag wins when it
// differs from its default; the configuration file wins otherwise.
func (b *BuildCmd) overlay(cfg *config.Config) {
	def := config.Default()
	if b.Content != def.Content.Dir {
		cfg.Content.Dir = b.Content
	}
	if b.Output != def.Output.Dir {
		cfg.Output.Dir = b.Output
	}
	if b.Style != def.Assets.Style {
		cfg.Assets.Style = b.Style
	}
	if b.Header != def.Assets.Header {
		cfg.Assets.Header = b.Header
	}
	if b.Footer != def.Assets.Footer {
		cfg.Assets.Footer = b.Footer
	}
	if b.KeepGoing {
		cfg.Build.KeepGoing = true
	}
	if b.Check {
		cfg.Build.CheckLinks = true
	}
}
