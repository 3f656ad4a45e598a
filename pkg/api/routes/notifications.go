package routes

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/schooltrack/schooltrack/pkg/store"
)

func NotificationsRouter(router fiber.Router, repository store.Repository) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listNotifications(c, repository)
	})
	router.Post("/:identifier/read", func(c *fiber.Ctx) error {
		return markNotificationRead(c, repository)
	})
}

func listNotifications(c *fiber.Ctx, repository store.Repository) error {
	guardian, err := callerGuardian(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	limit, err := strconv.ParseInt(c.Query("count", "50"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be an integer",
		})
	}

	notifications, err := repository.GetNotificationsForGuardian(context.Background(), guardian.PrimaryIdentifier, limit)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(notifications)
}

func markNotificationRead(c *fiber.Ctx, repository store.Repository) error {
	guardian, err := callerGuardian(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	err = repository.MarkNotificationRead(context.Background(), c.Params("identifier"), guardian.PrimaryIdentifier)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
