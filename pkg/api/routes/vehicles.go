package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/tracker"
)

func VehiclesRouter(router fiber.Router, trackerService *tracker.Service, repository store.Repository) {
	router.Post("/position", func(c *fiber.Ctx) error {
		return postPosition(c, trackerService, repository)
	})
}

func postPosition(c *fiber.Ctx, trackerService *tracker.Service, repository store.Repository) error {
	var requestBody struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Timestamp string   `json:"timestamp"`
	}
	if err := c.BodyParser(&requestBody); err != nil {
		return renderError(c, models.NewValidationError("Request body must be valid JSON"))
	}

	if requestBody.Latitude == nil || requestBody.Longitude == nil {
		return renderError(c, models.NewValidationError("Latitude and longitude are required"))
	}

	clientTime, err := parseClientTime(requestBody.Timestamp)
	if err != nil {
		return renderError(c, err)
	}

	vehicle, err := callerVehicle(c, repository)
	if err != nil {
		return renderError(c, err)
	}

	position, err := trackerService.Accept(context.Background(), vehicle.PrimaryIdentifier, tracker.PositionReport{
		Latitude:  *requestBody.Latitude,
		Longitude: *requestBody.Longitude,
		Timestamp: clientTime,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"latitude":  position.Current.Latitude(),
		"longitude": position.Current.Longitude(),
		"speed":     position.Speed,
		"timestamp": position.Timestamp,
	})
}
