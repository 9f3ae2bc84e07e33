package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Delimiter marks the start and end of a front matter block.
const Delimiter = "---"

// ErrSyntax indicates a document carried front matter delimiters but the
// metadata between them does not parse as a key-value mapping.
var ErrSyntax = errors.New("front matter is not a valid key-value mapping")

// FrontMatter is the parsed metadata of a document. All keys are retained;
// the accessors expose the two keys the generator consumes.
type FrontMatter struct {
	Fields map[string]any
}

// Title returns the `title` field, or "" when absent or not a string.
func (fm *FrontMatter) Title() string {
	return fm.stringField("title")
}

// Description returns the `meta_description` field, or "" when absent or not
// a string.
func (fm *FrontMatter) Description() string {
	return fm.stringField("meta_description")
}

func (fm *FrontMatter) stringField(key string) string {
	if fm == nil {
		return ""
	}
	s, _ := fm.Fields[key].(string)
	return s
}

// Content is the result of splitting a raw document.
type Content struct {
	FrontMatter *FrontMatter // nil when the document has no front matter
	Body        string
}

// RawParts splits a document into its raw metadata segment and body without
// parsing the metadata. ok is false when the document has no front matter
// block (no leading delimiter, or no closing one); the whole input is then
// the body.
func RawParts(raw string) (meta, body string, ok bool) {
	if !strings.HasPrefix(raw, Delimiter) {
		return "", raw, false
	}

	parts := strings.SplitN(raw, Delimiter, 3)
	if len(parts) < 3 {
		return "", raw, false
	}
	return parts[1], parts[2], true
}

// Split separates front matter from the Markdown body.
//
// A document without a leading delimiter is returned unchanged with no front
// matter. A leading delimiter without a closing one degrades the same way:
// the whole input becomes the body. Only when both delimiters are present is
// the metadata parsed, and then a malformed mapping is a hard error wrapping
// ErrSyntax.
func Split(raw string) (Content, error) {
	meta, body, ok := RawParts(raw)
	if !ok {
		return Content{Body: raw}, nil
	}

	fields, err := parseMapping(meta)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	return Content{
		FrontMatter: &FrontMatter{Fields: fields},
		Body:        strings.TrimLeftFunc(body, unicode.IsSpace),
	}, nil
}

// parseMapping parses the metadata segment (without delimiters) into a map.
// An empty or all-whitespace segment is a valid empty mapping.
func parseMapping(segment string) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(segment), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
