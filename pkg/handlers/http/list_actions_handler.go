package http

import (
	"github.com/ToxicGuard/ChatGuard/pkg/storage"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const defaultActionLimit = 25

type listActionsHandler struct {
	logger *logrus.Logger
	store  storage.Store
}

func NewListActionsHandler(logger *logrus.Logger, store storage.Store) Handler {
	return &listActionsHandler{
		logger: logger,
		store:  store,
	}
}

// Handle returns the enforcement history for one action kind.
func (h *listActionsHandler) Handle(c *fiber.Ctx) error {
	raw := c.Params("action")
	action := types.ParseActionKind(raw)
	if action == types.ActionNone {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid action kind"})
	}

	limit := c.QueryInt("limit", defaultActionLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be positive"})
	}

	actions, err := h.store.RecentActions(c.Context(), action, limit)
	if err != nil {
		h.logger.WithError(err).WithField("action", raw).Error("failed to load action history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load actions"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"action":  action.String(),
		"count":   len(actions),
		"actions": actions,
	})
}
