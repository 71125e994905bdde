package service

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/entrain/pkg/relay"
)

func startListener(t *testing.T, s *relay.Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = s.App.Listener(ln) }()
	t.Cleanup(func() { _ = s.Shutdown() })

	return "http://" + ln.Addr().String()
}
