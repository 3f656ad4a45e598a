package routes

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
)

func APIVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": "1.0",
	})
}

// renderError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy stays internal.
func renderError(c *fiber.Ctx, err error) error {
	var domainError *models.Error
	if errors.As(err, &domainError) {
		switch domainError.Kind {
		case models.ErrorKindValidation:
			c.SendStatus(fiber.StatusBadRequest)
		case models.ErrorKindNotFound:
			c.SendStatus(fiber.StatusNotFound)
		case models.ErrorKindForbidden:
			c.SendStatus(fiber.StatusForbidden)
		case models.ErrorKindInvalidState:
			c.SendStatus(fiber.StatusConflict)
		default:
			c.SendStatus(fiber.StatusInternalServerError)
		}

		response := fiber.Map{
			"kind":  domainError.Kind,
			"error": domainError.Message,
		}
		if domainError.ConflictingTripRef != "" {
			response["conflicting_trip"] = domainError.ConflictingTripRef
		}

		return c.JSON(response)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")

	c.SendStatus(fiber.StatusInternalServerError)
	return c.JSON(fiber.Map{
		"kind":  models.ErrorKindDownstreamDegraded,
		"error": "Internal error",
	})
}

// parseClientTime validates an optional client supplied timestamp once, at
// the edge.
func parseClientTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, models.NewValidationError("Timestamp must be a valid RFC3339 instant")
	}

	return &parsed, nil
}

// callerVehicle resolves the authenticated driver account to its vehicle.
func callerVehicle(c *fiber.Ctx, repository store.Repository) (*models.Vehicle, error) {
	accountID, _ := c.Locals("account_userid").(string)
	if accountID == "" {
		return nil, models.NewForbiddenError("No account identity on request")
	}

	vehicle, err := repository.GetVehicleByAccount(context.Background(), accountID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.NewNotFoundError("No vehicle registered for this account")
	}

	return vehicle, nil
}

// callerGuardian resolves the authenticated guardian account.
func callerGuardian(c *fiber.Ctx, repository store.Repository) (*models.Guardian, error) {
	accountID, _ := c.Locals("account_userid").(string)
	if accountID == "" {
		return nil, models.NewForbiddenError("No account identity on request")
	}

	guardian, err := repository.GetGuardianByAccount(context.Background(), accountID)
	if err != nil {
		return nil, err
	}
	if guardian == nil {
		return nil, models.NewNotFoundError("No guardian registered for this account")
	}

	return guardian, nil
}
