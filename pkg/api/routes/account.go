package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/util"
)

func AccountRouter(router fiber.Router, repository store.Repository) {
	router.Post("/notificationtoken", func(c *fiber.Ctx) error {
		return postNotificationToken(c, repository)
	})
}

func postNotificationToken(c *fiber.Ctx, repository store.Repository) error {
	var requestBody struct {
		Token string
	}
	if err := c.BodyParser(&requestBody); err != nil {
		return renderError(c, models.NewValidationError("Request body must be valid JSON"))
	}

	if requestBody.Token == "" {
		return renderError(c, models.NewValidationError("No token set"))
	}

	guardian, err := callerGuardian(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	existing, err := repository.GetPushTargets(context.Background(), []string{guardian.PrimaryIdentifier})
	if err != nil {
		return renderError(c, err)
	}

	var tokens []string
	if len(existing) > 0 {
		tokens = existing[0].Tokens
	}
	tokens = util.UniqueStrings(append(tokens, requestBody.Token))

	err = repository.UpsertPushTarget(context.Background(), &models.GuardianPushTarget{
		GuardianRef:          guardian.PrimaryIdentifier,
		Tokens:               tokens,
		ModificationDateTime: time.Now(),
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
