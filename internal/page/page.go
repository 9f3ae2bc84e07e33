// Package page assembles full HTML pages from raw Markdown documents.
package page

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"

	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
)

//go:embed assets/page.html
var defaultTemplate string

// ErrTemplate indicates the page template could not be parsed or executed.
// It is fatal to the whole run, unlike per-document errors.
var ErrTemplate = errors.New("page template error")

// Chrome is the sitewide material injected into every page. It is computed
// once per build and never mutated afterwards.
type Chrome struct {
	Style  string // raw stylesheet text
	Header string // pre-rendered header HTML
	Footer string // pre-rendered footer HTML
}

// Assembler turns raw document text into a finished HTML page. One Assembler
// serves a whole build; Assemble keeps no state between documents.
type Assembler struct {
	renderer *markdown.Renderer
	chrome   Chrome
	tpl      *template.Template
}

// NewAssembler builds an Assembler using the embedded page template.
func NewAssembler(renderer *markdown.Renderer, chrome Chrome) (*Assembler, error) {
	return NewAssemblerWithTemplate(renderer, chrome, defaultTemplate)
}

// NewAssemblerWithTemplate builds an Assembler from custom template text.
// The template receives six keys, always present: title, description, style,
// header, footer, content. Referencing any other key fails the execution.
func NewAssemblerWithTemplate(renderer *markdown.Renderer, chrome Chrome, tplText string) (*Assembler, error) {
	tpl, err := template.New("page").Option("missingkey=error").Parse(tplText)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrTemplate, err)
	}
	return &Assembler{renderer: renderer, chrome: chrome, tpl: tpl}, nil
}

// Assemble splits front matter, renders the body, and executes the template.
//
// Front matter errors carry frontmatter.ErrSyntax and fail only the document
// at hand; template failures carry ErrTemplate. Every template field is set
// on every page, defaulting to the empty string.
func (a *Assembler) Assemble(raw string) (string, error) {
	doc, err := frontmatter.Split(raw)
	if err != nil {
		return "", err
	}

	content, err := a.renderer.Render([]byte(doc.Body))
	if err != nil {
		return "", err
	}

	data := map[string]any{
		"title":       doc.FrontMatter.Title(),
		"description": doc.FrontMatter.Description(),
		"style":       template.CSS(a.chrome.Style),
		"header":      template.HTML(a.chrome.Header),
		"footer":      template.HTML(a.chrome.Footer),
		"content":     template.HTML(content),
	}

	var buf bytes.Buffer
	if err := a.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}
