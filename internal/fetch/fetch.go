// Package fetch obtains site content from a git repository.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// TokenEnv is the environment variable read for HTTP token authentication.
const TokenEnv = "MDSITE_GIT_TOKEN"

// Options configures a content checkout.
type Options struct {
	URL    string
	Branch string // empty clones the remote default branch
}

// Clone performs a shallow single-branch checkout of the content repository
// into a fresh temp directory and returns that directory. The caller removes
// it when the build is done.
func Clone(ctx context.Context, opts Options) (string, error) {
	dir, err := os.MkdirTemp("", "mdsite-content-*")
	if err != nil {
		return "", fmt.Errorf("create checkout workspace: %w", err)
	}

	slog.Debug("Cloning content repository",
		logfields.URL(opts.URL), logfields.Branch(opts.Branch), logfields.Path(dir))

	cloneOptions := &git.CloneOptions{URL: opts.URL, Depth: 1}
	if opts.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + opts.Branch)
		cloneOptions.SingleBranch = true
	}
	if token := os.Getenv(TokenEnv); token != "" {
		// Git hosts accept any username with a token over HTTP basic auth.
		cloneOptions.Auth = &githttp.BasicAuth{Username: "token", Password: token}
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOptions)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", classifyCloneError(opts.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Content repository cloned",
			logfields.URL(opts.URL), slog.String("commit", ref.Hash().String()[:8]), logfields.Path(dir))
	} else {
		slog.Info("Content repository cloned", logfields.URL(opts.URL), logfields.Path(dir))
	}

	return dir, nil
}

// classifyCloneError maps go-git failures onto error categories so the CLI
// can tell an auth problem from a flaky network. go-git reports most transport
// failures as plain strings, hence the substring heuristics.
func classifyCloneError(url string, err error) error {
	l := strings.ToLower(err.Error())

	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password") || strings.Contains(l, "authorization"):
		return siterrors.Wrap(err, siterrors.CategoryGit, siterrors.SeverityFatal, "authentication to content repository failed").
			WithContext("url", url)
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return siterrors.Wrap(err, siterrors.CategoryGit, siterrors.SeverityFatal, "content repository not found").
			WithContext("url", url)
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout") || strings.Contains(l, "connection refused") || strings.Contains(l, "no such host"):
		return siterrors.Wrap(err, siterrors.CategoryNetwork, siterrors.SeverityFatal, "content repository unreachable").
			WithContext("url", url)
	default:
		return siterrors.CloneFailed(url, err)
	}
}
