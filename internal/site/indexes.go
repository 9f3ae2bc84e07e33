package site

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stageIndexes generates a listing page for every content directory that has
// no index.md of its own, so directory URLs never 404.
func stageIndexes(ctx context.Context, bs *buildState) error {
	for _, plan := range planIndexes(bs.docs) {
		select {
		case <-ctx.Done():
			return NewCanceledStageError(StageIndexes, ctx.Err())
		default:
		}

		html, err := bs.assembler.Assemble(buildIndexMarkdown(plan))
		if err != nil {
			return fmt.Errorf("assemble index for %s: %w", plan.Dir, err)
		}

		outPath := filepath.Join(bs.outputDir, filepath.FromSlash(plan.Dir), "index.html")
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("create index directory for %s: %w", plan.Dir, err)
		}
		if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write index %s: %w", outPath, err)
		}
		bs.report.Indexes++
	}
	return nil
}

// indexPlan describes one listing page to generate.
type indexPlan struct {
	Dir     string   // slash-separated dir relative to the content root, "." for the root
	Title   string
	Subdirs []string // child directory names
	Pages   []string // page file names, index.md excluded
}

// planIndexes derives the listing pages from the discovered documents.
func planIndexes(docs []DocFile) []indexPlan {
	pages := map[string][]string{}
	subdirs := map[string]map[string]struct{}{}
	hasIndex := map[string]bool{}
	dirs := map[string]struct{}{".": {}}

	for _, doc := range docs {
		rel := filepath.ToSlash(doc.RelPath)
		dir := path.Dir(rel)

		for d := dir; ; d = path.Dir(d) {
			dirs[d] = struct{}{}
			if d == "." {
				break
			}
		}
		for child := dir; child != "."; child = path.Dir(child) {
			parent := path.Dir(child)
			if subdirs[parent] == nil {
				subdirs[parent] = map[string]struct{}{}
			}
			subdirs[parent][path.Base(child)] = struct{}{}
		}

		name := path.Base(rel)
		if name == "index.md" {
			hasIndex[dir] = true
			continue
		}
		pages[dir] = append(pages[dir], name)
	}

	plans := make([]indexPlan, 0, len(dirs))
	for dir := range dirs {
		if hasIndex[dir] {
			continue
		}

		plan := indexPlan{Dir: dir, Title: indexTitle(dir)}
		for sub := range subdirs[dir] {
			plan.Subdirs = append(plan.Subdirs, sub)
		}
		sort.Strings(plan.Subdirs)
		plan.Pages = append(plan.Pages, pages[dir]...)
		sort.Strings(plan.Pages)
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Dir < plans[j].Dir })

	return plans
}

func indexTitle(dir string) string {
	if dir == "." {
		return "Home"
	}
	return humanizeTitle(path.Base(dir))
}

// humanizeTitle turns a file or directory name into a display title.
func humanizeTitle(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(cleaned)
}

// buildIndexMarkdown emits the listing document. Hrefs are written in their
// published form, which the link rewriter leaves untouched.
func buildIndexMarkdown(plan indexPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: %s\n---\n\n# %s\n\n", plan.Title, plan.Title)
	for _, sub := range plan.Subdirs {
		fmt.Fprintf(&b, "- [%s](%s/)\n", humanizeTitle(sub), sub)
	}
	for _, pg := range plan.Pages {
		base := strings.TrimSuffix(pg, ".md")
		fmt.Fprintf(&b, "- [%s](%s.html)\n", humanizeTitle(base), base)
	}
	return b.String()
}
