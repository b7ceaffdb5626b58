package http

import (
	"github.com/ToxicGuard/ChatGuard/pkg/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getStatsHandler struct {
	logger *logrus.Logger
	store  storage.Store
}

func NewGetStatsHandler(logger *logrus.Logger, store storage.Store) Handler {
	return &getStatsHandler{
		logger: logger,
		store:  store,
	}
}

// Handle returns the lifetime moderation counters.
func (h *getStatsHandler) Handle(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to load moderation stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load stats"})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
