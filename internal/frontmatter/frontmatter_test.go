package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoDelimiter_ReturnsBodyUnchanged(t *testing.T) {
	input := "# Title\n\nHello\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.Nil(t, c.FrontMatter)
	require.Equal(t, input, c.Body)
}

func TestSplit_ValidFrontMatter_ExtractsTitleAndDescription(t *testing.T) {
	input := "---\ntitle: My Page\nmeta_description: A page.\n---\n# Heading\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.NotNil(t, c.FrontMatter)
	require.Equal(t, "My Page", c.FrontMatter.Title())
	require.Equal(t, "A page.", c.FrontMatter.Description())
	require.Equal(t, "# Heading\n", c.Body)
}

func TestSplit_MissingClosingDelimiter_DegradesToBodyOnly(t *testing.T) {
	input := "---\ntitle: My Page\n# Heading\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.Nil(t, c.FrontMatter)
	require.Equal(t, input, c.Body)
}

func TestSplit_MalformedMapping_ReturnsSyntaxError(t *testing.T) {
	input := "---\ntitle: [unclosed\n---\nbody\n"

	_, err := Split(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSyntax))
}

func TestSplit_ScalarMetadata_ReturnsSyntaxError(t *testing.T) {
	input := "---\njust a sentence\n---\nbody\n"

	_, err := Split(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSyntax))
}

func TestSplit_UnknownKeys_AreRetainedAndIgnored(t *testing.T) {
	input := "---\ntitle: T\nauthor: someone\ntags:\n  - one\n---\nbody\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, "T", c.FrontMatter.Title())
	require.Empty(t, c.FrontMatter.Description())
	require.Equal(t, "someone", c.FrontMatter.Fields["author"])
	require.Equal(t, []any{"one"}, c.FrontMatter.Fields["tags"])
}

func TestSplit_MissingKeys_AccessorsReturnEmpty(t *testing.T) {
	input := "---\nauthor: someone\n---\nbody\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.NotNil(t, c.FrontMatter)
	require.Empty(t, c.FrontMatter.Title())
	require.Empty(t, c.FrontMatter.Description())
}

func TestSplit_NonStringTitle_AccessorReturnsEmpty(t *testing.T) {
	input := "---\ntitle: 42\n---\nbody\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.Empty(t, c.FrontMatter.Title())
}

func TestSplit_EmptyBlock_YieldsEmptyMapping(t *testing.T) {
	input := "---\n---\n# Heading\n"

	c, err := Split(input)
	require.NoError(t, err)
	require.NotNil(t, c.FrontMatter)
	require.Empty(t, c.FrontMatter.Fields)
	require.Equal(t, "# Heading\n", c.Body)
}

func TestSplit_LeadingWhitespace_StrippedFromBodyOnly(t *testing.T) {
	input := "---\ntitle: T\n---\n\n\n  body text\ntrailing  \n"

	c, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, "body text\ntrailing  \n", c.Body)
}

func TestFrontMatter_NilReceiver_AccessorsReturnEmpty(t *testing.T) {
	var fm *FrontMatter
	require.Empty(t, fm.Title())
	require.Empty(t, fm.Description())
}

func TestRawParts_Table(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta string
		wantBody string
		wantOK   bool
	}{
		{
			name:     "no delimiter",
			input:    "# Title\n",
			wantMeta: "",
			wantBody: "# Title\n",
			wantOK:   false,
		},
		{
			name:     "unterminated block",
			input:    "---\ntitle: T\nbody without closer\n",
			wantMeta: "",
			wantBody: "---\ntitle: T\nbody without closer\n",
			wantOK:   false,
		},
		{
			name:     "complete block kept raw",
			input:    "---\ntitle: [unclosed\n---\nbody\n",
			wantMeta: "\ntitle: [unclosed\n",
			wantBody: "\nbody\n",
			wantOK:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta, body, ok := RawParts(tc.input)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantMeta, meta)
			require.Equal(t, tc.wantBody, body)
		})
	}
}
