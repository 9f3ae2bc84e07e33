package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdsite/internal/config"
	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/linkcheck"
)

// CheckCmd implements the 'check' command: verify internal references in an
// already generated site.
type CheckCmd struct {
	Dir string `arg:"" optional:"" default:"_site" help:"Generated site directory to check."`
}

func (c *CheckCmd) Run(_ *Globals) error {
	dir := config.ExpandPath(c.Dir)

	report, err := linkcheck.CheckDir(dir)
	if err != nil {
		return siterrors.Wrap(err, siterrors.CategoryFileSystem, siterrors.SeverityFatal, "link check failed").
			WithContext("path", dir)
	}

	for _, b := range report.Broken {
		fmt.Printf("%s: broken reference %q\n", b.Page, b.Ref)
	}
	fmt.Printf("pages=%d internal=%d external=%d broken=%d\n",
		report.Pages, report.Checked, report.External, len(report.Broken))

	if !report.Ok() {
		return siterrors.New(siterrors.CategoryContent, siterrors.SeverityError,
			fmt.Sprintf("%d broken internal references", len(report.Broken)))
	}
	return nil
}
