// Package events publishes finished build reports to NATS for CI and
// monitoring consumers.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// DefaultSubject is used when the configuration names none.
const DefaultSubject = "mdsite.builds"

// Publisher sends build reports to a NATS subject. A nil Publisher is valid
// and publishes nothing, so callers need no enabled-check at every site.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server. Publishing is strictly best-effort, but a
// server that cannot be reached at startup is reported so the operator sees
// the misconfiguration once instead of a warning per build.
func Connect(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(url, nats.Name("mdsite"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}

	slog.Info("Build event publishing enabled", logfields.URL(url), logfields.Subject(subject))
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends one build report as JSON. Failures are logged and swallowed;
// an event that cannot be delivered never fails the build it describes.
func (p *Publisher) Publish(report *site.BuildReport) {
	if p == nil || report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		slog.Warn("Failed to encode build event", logfields.BuildID(report.BuildID), logfields.Error(err))
		return
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to publish build event",
			logfields.BuildID(report.BuildID), logfields.Subject(p.subject), logfields.Error(err))
		return
	}

	slog.Debug("Published build event",
		logfields.BuildID(report.BuildID), logfields.Subject(p.subject), logfields.Outcome(string(report.Outcome)))
}

// Close flushes and drops the connection. Safe on nil.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
