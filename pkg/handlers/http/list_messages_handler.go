package http

import (
	"github.com/ToxicGuard/ChatGuard/pkg/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const defaultMessageLimit = 50

type listMessagesHandler struct {
	logger *logrus.Logger
	store  storage.Store
}

func NewListMessagesHandler(logger *logrus.Logger, store storage.Store) Handler {
	return &listMessagesHandler{
		logger: logger,
		store:  store,
	}
}

// Handle returns the most recent classified messages, newest first.
func (h *listMessagesHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultMessageLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be positive"})
	}

	messages, err := h.store.RecentMessages(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to load message history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load messages"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":    len(messages),
		"messages": messages,
	})
}
