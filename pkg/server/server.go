package server

import (
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/config"
	"github.com/ToxicGuard/ChatGuard/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Server is the common behavior of all servers.
type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	config *config.Config
	logger *logrus.Logger
	router *fiber.App
}

func NewBaseServer(config *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
	})

	r.Server().NoDefaultServerHeader = true

	return &BaseServer{
		config: config,
		logger: logger,
		router: r,
	}
}

func (s *BaseServer) setupHealthCheck() {
	s.router.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"version": version.GetInfo(),
		})
	})
}
