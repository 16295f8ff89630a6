package httpapi

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	shutdownTimeout = 10 * time.Second
)

// Routes maps a path onto the handler serving every method on it.
type Routes map[string]Handler

// Server exposes Routes over HTTP.
type Server struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, routes Routes) *Server {
	s := &Server{address: address, logger: l.With("module", "http_server")}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := err.Error()

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			c.Set(headerAllowOrigin, "*")
			return c.Status(code).JSON(errorBody{Error: message})
		},
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	for path, h := range routes {
		s.app.All(path, adapt(h))
	}

	return s
}

// App exposes the underlying fiber application, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	return s.app.Listener(listen)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(headerRequestID, requestID)

		err := c.Next()

		s.logger.Info(c.UserContext(), "request",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

// adapt runs h against the fiber request.
func adapt(h Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := h.Handle(c.UserContext(), toEvent(c))

		for k, v := range resp.Headers {
			c.Set(k, v)
		}
		return c.Status(resp.StatusCode).SendString(resp.Body)
	}
}

func toEvent(c *fiber.Ctx) Event {
	ev := Event{
		Method:  c.Method(),
		Path:    c.Path(),
		Headers: make(map[string]string),
		Query:   make(map[string]string),
		Body:    string(c.Body()),
	}
	for k, v := range c.GetReqHeaders() {
		if len(v) > 0 {
			ev.Headers[k] = v[0]
		}
	}
	for k, v := range c.Queries() {
		ev.Query[k] = v
	}
	return ev
}
