// Package config loads and validates the site configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Assets  AssetsConfig  `yaml:"assets"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
	Events  EventsConfig  `yaml:"events"`
}

// SiteConfig holds sitewide settings
type SiteConfig struct {
	// RootMarker overrides the path segment treated as the site root in
	// links. Empty means the content directory's base name.
	RootMarker string `yaml:"root_marker,omitempty"`
	// Template is an optional custom page template path. Empty selects the
	// embedded template.
	Template string `yaml:"template,omitempty"`
}

// ContentConfig locates the content to build
type ContentConfig struct {
	Dir        string `yaml:"dir"`
	Repository string `yaml:"repository,omitempty"` // git URL; when set the content is cloned
	Branch     string `yaml:"branch,omitempty"`
}

// AssetsConfig names the chrome files, relative to the content dir unless absolute
type AssetsConfig struct {
	Style  string `yaml:"style"`
	Header string `yaml:"header"`
	Footer string `yaml:"footer"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// BuildConfig tunes build behavior
type BuildConfig struct {
	KeepGoing       bool `yaml:"keep_going"`       // continue past per-document failures
	GenerateIndexes bool `yaml:"generate_indexes"` // generate listing pages for dirs without index.md
	CheckLinks      bool `yaml:"check_links"`      // verify internal links after the build
}

// ServeConfig tunes the preview server
type ServeConfig struct {
	Addr            string `yaml:"addr"`
	LiveReload      bool   `yaml:"live_reload"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // e.g. "5m"; empty disables scheduled rebuilds
	HistoryDB       string `yaml:"history_db,omitempty"`       // sqlite path; empty keeps history in memory
}

// EventsConfig configures optional build event publishing
type EventsConfig struct {
	URL     string `yaml:"url,omitempty"` // NATS server URL; empty disables publishing
	Subject string `yaml:"subject,omitempty"`
}

// RebuildEvery parses the scheduled rebuild interval. Zero means disabled.
func (s ServeConfig) RebuildEvery() (time.Duration, error) {
	if s.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil {
		return 0, fmt.Errorf("parse serve.rebuild_interval: %w", err)
	}
	return d, nil
}

// Default returns the configuration used when no file and no flags override it.
func Default() *Config {
	return &Config{
		Content: ContentConfig{Dir: "content", Branch: "main"},
		Assets:  AssetsConfig{Style: "style.css", Header: "header.md", Footer: "footer.md"},
		Output:  OutputConfig{Dir: "_site"},
		Serve:   ServeConfig{Addr: ":8080", LiveReload: true},
		Events:  EventsConfig{Subject: "mdsite.builds"},
	}
}

// Load loads configuration from the specified file. Values absent from the
// file keep their defaults; environment references in the file are expanded.
func Load(configPath string) (*Config, error) {
	// .env is optional and never overrides the real environment.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, siterrors.ConfigNotFound(configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, siterrors.Wrap(err, siterrors.CategoryConfig, siterrors.SeverityFatal, "failed to parse config file").
			WithContext("path", configPath)
	}

	applyFallbacks(cfg)

	if _, err := cfg.Serve.RebuildEvery(); err != nil {
		return nil, siterrors.Wrap(err, siterrors.CategoryConfig, siterrors.SeverityFatal, "invalid serve.rebuild_interval").
			WithContext("path", configPath)
	}

	return cfg, nil
}

// applyFallbacks restores defaults for fields a config file blanked out.
func applyFallbacks(cfg *Config) {
	def := Default()
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = def.Content.Dir
	}
	if cfg.Content.Branch == "" {
		cfg.Content.Branch = def.Content.Branch
	}
	if cfg.Assets.Style == "" {
		cfg.Assets.Style = def.Assets.Style
	}
	if cfg.Assets.Header == "" {
		cfg.Assets.Header = def.Assets.Header
	}
	if cfg.Assets.Footer == "" {
		cfg.Assets.Footer = def.Assets.Footer
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = def.Serve.Addr
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = def.Events.Subject
	}
}

// RootMarker resolves the effective site root marker for link rewriting.
func (c *Config) RootMarker() string {
	if c.Site.RootMarker != "" {
		return c.Site.RootMarker
	}
	return filepath.Base(ExpandPath(c.Content.Dir))
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Site.RootMarker = ""
	example.Events.URL = ""
	example.Serve.RebuildInterval = ""

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# mdsite configuration. Values support ${ENV_VAR} expansion.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath expands a leading tilde to the user's home directory. Paths
// without one come back unchanged, as does everything when the home
// directory cannot be determined.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
