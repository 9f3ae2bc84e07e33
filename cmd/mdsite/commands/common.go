// Package commands defines the mdsite CLI: global flags plus the build,
// init, serve, and check commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/internal/config"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config    string           `short:"c" help:"Optional YAML configuration file. Flags override its values."`
	LogLevel  string           `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Minimum log level."`
	LogFormat string           `name:"log-format" default:"text" enum:"text,json" help:"Log output format."`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit."`
}

// AfterApply installs the process-wide logger once flags are parsed.
func (g *Globals) AfterApply() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if g.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// CLI is the root command grammar.
type CLI struct {
	Globals

	Build BuildCmd `cmd:"" help:"Build the site from a content directory."`
	Init  InitCmd  `cmd:"" help:"Scaffold a new site."`
	Serve ServeCmd `cmd:"" help:"Build the site and serve it locally with live reload."`
	Check CheckCmd `cmd:"" help:"Verify internal links in a generated site."`
}

// loadConfig returns the file-backed configuration when a path was given and
// the defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(config.ExpandPath(path))
}
