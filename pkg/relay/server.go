package relay

import (
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// NewServer creates the fiber app with recovery, compression and the health
// route installed. Routes are added with ServeRoute.
func NewServer(serverConfig *ServerConfig) *Server {
	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.Host == "" {
		serverConfig.Host = DefaultServerHost
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = DefaultServerPort
	}
	if serverConfig.BodyLimit == 0 {
		serverConfig.BodyLimit = DefaultBodyLimit
	}

	log.Info().
		Any("serverConfig", serverConfig).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(ZstdMiddleware([]string{HealthRoute}))

	app.Get(HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(createResponse(map[string]string{"status": "ok"}, nil))
	})

	return &Server{
		App:    app,
		config: serverConfig,
	}
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := statusOf(err)

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]any{}, err))
}

// RouteName is the path ServeRoute registers for request type T.
func RouteName[T any]() string {
	var zero T
	return "/" + reflect.TypeOf(zero).Name()
}

// ServeRoute registers handler as POST /<name of Req>.
func ServeRoute[Req, Resp any](s *Server, handler RouterHandler[Req, Resp]) {
	route := RouteName[Req]()

	s.App.Post(route, func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			log.Error().
				Err(err).
				Str("route", route).
				Msg("Failed to parse request body")
			var zero Resp
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(zero, err))
		}

		resp, err := handler(c, req)
		if err != nil {
			log.Error().
				Err(err).
				Str("route", route).
				Msg("Handler returned error")
			var zero Resp
			return c.Status(statusOf(err)).JSON(createResponse(zero, err))
		}

		return c.JSON(createResponse(resp, nil))
	})

	log.Debug().Str("route", route).Msg("Registered route")
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start blocks serving until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	log.Info().Str("address", s.Address()).Msg("Server starting")
	return s.App.Listen(s.Address())
}

func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
