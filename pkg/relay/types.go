// Package relay is the HTTP transport of the scoring service: a fiber server
// with typed POST routes and a matching resty client, both speaking JSON
// wrapped in StdResponse and optionally compressed with zstd.
package relay

import (
	"github.com/gofiber/fiber/v2"
)

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8888
	DefaultBodyLimit  = 4 << 20

	DefaultClientTimeout = 30 // seconds, scaled by NewClient

	HealthRoute = "/health"
)

// Server is a fiber app plus the address it listens on.
type Server struct {
	App    *fiber.App
	config *ServerConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	BodyLimit int
}

// StdResponse wraps every route reply. Error is set instead of an HTTP-only
// failure so clients always get a JSON body back.
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// RouterHandler handles one decoded request. Return BadRequest(err) for
// caller mistakes; any other error answers 500.
type RouterHandler[Req, Resp any] func(*fiber.Ctx, Req) (Resp, error)
