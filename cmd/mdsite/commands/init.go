package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdsite/internal/config"
)

// InitCmd implements the 'init' command. It scaffolds a config file and a
// content directory with a front page, an about page, and the chrome files.
type InitCmd struct {
	Dir   string `arg:"" optional:"" default:"." help:"Directory to scaffold the site in."`
	Force bool   `help:"Overwrite existing files."`
}

const scaffoldIndex = `---
title: Home
meta_description: A new mdsite site
---

# Welcome

Your site lives in ` + "`content/`" + `. Every ` + "`.md`" + ` file becomes a page, and
this one becomes the front page.

- Edit [about.md](/content/about.md) for a second page.
- Put images and downloads under ` + "`content/static/`" + `.
- Adjust the look in ` + "`content/style.css`" + `.
`

const scaffoldAbout = `---
title: About
meta_description: Who makes this site
---

# About

Describe your site here.
`

const scaffoldHeader = `[Home](/content/index.md) | [About](/content/about.md)
`

const scaffoldFooter = `Built with mdsite.
`

const scaffoldStyle = `body {
  max-width: 46rem;
  margin: 0 auto;
  padding: 0 1rem;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
  color: #1a1a1a;
}

header {
  border-bottom: 1px solid #ddd;
  padding: 0.5rem 0;
  color: #555;
}

footer {
  border-top: 1px solid #ddd;
  margin-top: 2rem;
  padding: 0.5rem 0;
  color: #555;
  font-size: 0.9rem;
}

pre {
  background: #f6f6f6;
  padding: 0.75rem;
  overflow-x: auto;
}

code {
  font-family: ui-monospace, monospace;
}

a {
  color: #0055aa;
}
`

// scaffoldFiles are written relative to the target directory. The chrome
// files live inside the content dir, where the default asset paths find them.
var scaffoldFiles = []struct {
	path    string
	content string
}{
	{"content/index.md", scaffoldIndex},
	{"content/about.md", scaffoldAbout},
	{"content/header.md", scaffoldHeader},
	{"content/footer.md", scaffoldFooter},
	{"content/style.css", scaffoldStyle},
}

func (i *InitCmd) Run(_ *Globals) error {
	dir := config.ExpandPath(i.Dir)

	if err := os.MkdirAll(filepath.Join(dir, "content", "static"), 0o755); err != nil {
		return fmt.Errorf("create content directory: %w", err)
	}

	for _, f := range scaffoldFiles {
		if err := writeScaffoldFile(filepath.Join(dir, f.path), f.content, i.Force); err != nil {
			return err
		}
	}

	if err := config.Init(filepath.Join(dir, "mdsite.yaml"), i.Force); err != nil {
		return err
	}

	fmt.Println("Scaffolded a new site in", dir)
	fmt.Println("Build it with: mdsite build", filepath.Join(dir, "content"))
	return nil
}

func writeScaffoldFile(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
