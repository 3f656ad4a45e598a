package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/schooltrack/schooltrack/pkg/api/routes"
	"github.com/schooltrack/schooltrack/pkg/fanout"
	"github.com/schooltrack/schooltrack/pkg/journey"
	"github.com/schooltrack/schooltrack/pkg/notify"
	"github.com/schooltrack/schooltrack/pkg/redis_client"
	"github.com/schooltrack/schooltrack/pkg/resolve"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/schooltrack/schooltrack/pkg/tracker"
)

func SetupServer(listen string) error {
	repository := store.NewMongoRepository()

	pushQueue, err := redis_client.QueueConnection.OpenQueue(notify.PushQueueName)
	if err != nil {
		return err
	}

	publisher := &fanout.RedisPublisher{Client: redis_client.Client}
	dispatcher := fanout.NewDispatcher(publisher, repository, pushQueue)
	resolver := resolve.NewResolver(repository, redis_client.Client)

	journeyService := journey.NewService(repository, resolver, dispatcher)
	trackerService := tracker.NewService(repository, dispatcher)

	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	authenticated := group.Group("", EnsureValidToken())

	routes.VehiclesRouter(authenticated.Group("/vehicles"), trackerService, repository)
	routes.JourneysRouter(authenticated.Group("/journeys"), journeyService, repository)
	routes.NotificationsRouter(authenticated.Group("/notifications"), repository)
	routes.AccountRouter(authenticated.Group("/account"), repository)

	return webApp.Listen(listen)
}
