package server

import (
	"fmt"

	"github.com/ToxicGuard/ChatGuard/pkg/config"
	handlers "github.com/ToxicGuard/ChatGuard/pkg/handlers/http"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type (
	StatsServerDI struct {
		Config           *config.Config
		Logger           *logrus.Logger
		HandlerTransport handlers.HandlerTransport
	}
	// StatsServer exposes the moderation history, counters and metrics
	// over HTTP. It never mutates pipeline state.
	StatsServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewStatsServer(di StatsServerDI) *StatsServer {
	return &StatsServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}
}

func (s *StatsServer) Run() error {
	s.router.Use(recover.New())
	s.setupRoutes()
	s.setupHealthCheck()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("Starting stats server")
	return s.router.Listen(addr)
}

func (s *StatsServer) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.Get("/stats", s.handlerTransport.GetStatsHandler.Handle)
		api.Get("/messages", s.handlerTransport.ListMessagesHandler.Handle)
		api.Get("/actions/:action", s.handlerTransport.ListActionsHandler.Handle)
	}

	s.router.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())
		handler(c.Context())
		return nil
	})
}

func (s *StatsServer) Shutdown() error {
	return s.router.Shutdown()
}
