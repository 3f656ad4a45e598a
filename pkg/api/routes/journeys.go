package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/schooltrack/schooltrack/pkg/journey"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
)

func JourneysRouter(router fiber.Router, journeyService *journey.Service, repository store.Repository) {
	router.Post("/start", func(c *fiber.Ctx) error {
		return startJourney(c, journeyService, repository)
	})
	router.Post("/end", func(c *fiber.Ctx) error {
		return endJourney(c, journeyService, repository)
	})
	router.Get("/status", func(c *fiber.Ctx) error {
		return journeyStatus(c, journeyService, repository)
	})

	router.Post("/riders/:riderid/pickup", func(c *fiber.Ctx) error {
		return riderPickup(c, journeyService, repository)
	})
	router.Post("/riders/:riderid/drop", func(c *fiber.Ctx) error {
		return riderDrop(c, journeyService, repository)
	})
	router.Post("/riders/:riderid/skip", func(c *fiber.Ctx) error {
		return riderSkip(c, journeyService, repository)
	})
}

func parseOptionalTimeBody(c *fiber.Ctx, field string) (*time.Time, error) {
	var requestBody map[string]string
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&requestBody); err != nil {
			return nil, models.NewValidationError("Request body must be valid JSON")
		}
	}

	return parseClientTime(requestBody[field])
}

func startJourney(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	clientTime, err := parseOptionalTimeBody(c, "startedAt")
	if err != nil {
		return renderError(c, err)
	}

	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	result, err := journeyService.Start(context.Background(), vehicle.PrimaryIdentifier, clientTime)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"tripId":            result.TripRef,
		"tripKind":          result.Kind,
		"routeId":           result.RouteRef,
		"routeName":         result.RouteName,
		"riderCount":        result.RiderCount,
		"notificationsSent": result.NotificationsSent,
	})
}

func endJourney(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	clientTime, err := parseOptionalTimeBody(c, "endedAt")
	if err != nil {
		return renderError(c, err)
	}

	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	result, err := journeyService.End(context.Background(), vehicle.PrimaryIdentifier, clientTime)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"tripId":            result.TripRef,
		"startedAt":         result.StartDateTime,
		"endedAt":           result.EndDateTime,
		"notificationsSent": result.NotificationsSent,
	})
}

func journeyStatus(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	trip, err := journeyService.Status(context.Background(), vehicle.PrimaryIdentifier)
	if err != nil {
		return renderError(c, err)
	}

	if trip == nil {
		return c.JSON(fiber.Map{
			"hasActiveTrip": false,
		})
	}

	tripReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, trip)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"hasActiveTrip": true,
		"trip":          tripReduced,
	})
}

func riderPickup(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	clientTime, err := parseOptionalTimeBody(c, "pickedAt")
	if err != nil {
		return renderError(c, err)
	}

	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	result, err := journeyService.Pickup(context.Background(), vehicle.PrimaryIdentifier, c.Params("riderid"), clientTime)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"riderId":         result.RiderRef,
		"pickupTime":      result.Timestamp,
		"pickupPointName": result.PointName,
	})
}

func riderDrop(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	clientTime, err := parseOptionalTimeBody(c, "droppedAt")
	if err != nil {
		return renderError(c, err)
	}

	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	result, err := journeyService.Drop(context.Background(), vehicle.PrimaryIdentifier, c.Params("riderid"), clientTime)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"riderId":       result.RiderRef,
		"dropTime":      result.Timestamp,
		"dropPointName": result.PointName,
	})
}

func riderSkip(c *fiber.Ctx, journeyService *journey.Service, repository store.Repository) error {
	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	result, err := journeyService.Skip(context.Background(), vehicle.PrimaryIdentifier, c.Params("riderid"))
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"riderId": result.RiderRef,
	})
}
