package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanIndexes_SkipsDirsWithTheirOwnIndex(t *testing.T) {
	docs := []DocFile{
		{RelPath: "index.md"},
		{RelPath: "guides/setup.md"},
		{RelPath: "guides/advanced/tuning.md"},
		{RelPath: "reference/index.md"},
		{RelPath: "reference/api.md"},
	}

	plans := planIndexes(docs)

	byDir := map[string]indexPlan{}
	for _, p := range plans {
		byDir[p.Dir] = p
	}

	require.NotContains(t, byDir, ".")
	require.NotContains(t, byDir, "reference")

	guides, ok := byDir["guides"]
	require.True(t, ok)
	require.Equal(t, "Guides", guides.Title)
	require.Equal(t, []string{"advanced"}, guides.Subdirs)
	require.Equal(t, []string{"setup.md"}, guides.Pages)

	advanced, ok := byDir["guides/advanced"]
	require.True(t, ok)
	require.Equal(t, "Advanced", advanced.Title)
	require.Empty(t, advanced.Subdirs)
	require.Equal(t, []string{"tuning.md"}, advanced.Pages)
}

func TestPlanIndexes_RootWithoutIndexGetsHomeListing(t *testing.T) {
	docs := []DocFile{
		{RelPath: "about.md"},
		{RelPath: "guides/setup.md"},
	}

	plans := planIndexes(docs)
	require.NotEmpty(t, plans)
	require.Equal(t, ".", plans[0].Dir)
	require.Equal(t, "Home", plans[0].Title)
	require.Equal(t, []string{"guides"}, plans[0].Subdirs)
	require.Equal(t, []string{"about.md"}, plans[0].Pages)
}

func TestBuildIndexMarkdown_ListsSubdirsThenPages(t *testing.T) {
	md := buildIndexMarkdown(indexPlan{
		Dir:     "guides",
		Title:   "Guides",
		Subdirs: []string{"advanced"},
		Pages:   []string{"getting-started.md", "setup.md"},
	})

	require.Contains(t, md, "title: Guides")
	require.Contains(t, md, "# Guides")
	require.Contains(t, md, "- [Advanced](advanced/)")
	require.Contains(t, md, "- [Getting Started](getting-started.html)")
	require.Contains(t, md, "- [Setup](setup.html)")
	require.Less(t, strings.Index(md, "advanced/"), strings.Index(md, "setup.html"))
}

func TestHumanizeTitle_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "guides", want: "Guides"},
		{name: "hyphenated", in: "getting-started", want: "Getting Started"},
		{name: "underscored", in: "api_reference", want: "Api Reference"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, humanizeTitle(tc.in))
		})
	}
}
