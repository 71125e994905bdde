package relay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves s on a random local port and returns its base URL.
func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = s.App.Listener(ln) }()
	t.Cleanup(func() { _ = s.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, DefaultClientTimeout*time.Second, c.config.Timeout)
	assert.False(t, c.config.ZstdCompression)

	headers := NewClient(&ClientConfig{ZstdCompression: true}).buildHeaders()
	assert.Equal(t, zstdEncoding, headers["Content-Encoding"])
	assert.Equal(t, zstdEncoding, headers["Accept-Encoding"])
}

func TestSend(t *testing.T) {
	baseURL := startServer(t, newEchoServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, zstd := range []bool{false, true} {
		c := NewClient(&ClientConfig{Timeout: 5 * time.Second, ZstdCompression: zstd})

		resp, err := Send[echoRequest, echoResponse](ctx, c, baseURL+"/", echoRequest{Message: "ping"})
		require.NoError(t, err, "zstd=%v", zstd)
		assert.Equal(t, echoResponse{Echo: "ping", Length: 4}, resp)

		_, err = Send[echoRequest, echoResponse](ctx, c, baseURL, echoRequest{Fail: "bad"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad message")
		assert.Contains(t, err.Error(), "400")
	}
}

func TestSendMany(t *testing.T) {
	baseURL := startServer(t, newEchoServer(t))
	c := NewClient(&ClientConfig{Timeout: 5 * time.Second})

	t.Run("results line up with inputs", func(t *testing.T) {
		reqs := []echoRequest{{Message: "a"}, {Fail: "internal"}, {Message: "ccc"}}
		urls := []string{baseURL, baseURL, baseURL}

		resps, errs := SendMany[echoRequest, echoResponse](context.Background(), c, urls, reqs)
		require.Len(t, resps, 3)
		assert.NoError(t, errs[0])
		assert.Error(t, errs[1])
		assert.NoError(t, errs[2])
		assert.Equal(t, "a", resps[0].Echo)
		assert.Equal(t, 3, resps[2].Length)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		resps, errs := SendMany[echoRequest, echoResponse](context.Background(), c, []string{baseURL}, nil)
		assert.Nil(t, resps)
		require.Len(t, errs, 1)
		assert.Error(t, errs[0])
	})
}
