package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/site"
)

func TestPublisher_NilIsSafe(t *testing.T) {
	var p *Publisher

	report := site.NewBuildReport()
	report.Finish()
	report.DeriveOutcome()

	require.NotPanics(t, func() {
		p.Publish(report)
		p.Publish(nil)
		p.Close()
	})
}

func TestConnect_UnreachableServerReturnsError(t *testing.T) {
	// Port 1 is never a NATS server; the dial fails without leaving the host.
	_, err := Connect("nats://127.0.0.1:1", "")
	require.Error(t, err)
}
