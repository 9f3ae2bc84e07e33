package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
)

func TestServeCmd_Overlay_NoLiveReloadDisablesIt(t *testing.T) {
	cfg := config.Default()
	require.True(t, cfg.Serve.LiveReload)

	cmd := &ServeCmd{Content: "content", Addr: ":8080", Output: "_site", NoLiveReload: true}
	cmd.overlay(cfg)

	require.False(t, cfg.Serve.LiveReload)
}

func TestServeCmd_Overlay_ConfigAddrWinsAtFlagDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Serve.Addr = ":3000"

	cmd := &ServeCmd{Content: "content", Addr: ":8080", Output: "_site"}
	cmd.overlay(cfg)

	require.Equal(t, ":3000", cfg.Serve.Addr)
}
