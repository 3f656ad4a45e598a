package notify

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schooltrack/schooltrack/pkg/consumer"
	"github.com/schooltrack/schooltrack/pkg/database"
	"github.com/schooltrack/schooltrack/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

// PushQueueName is the queue the API process publishes push tasks onto.
const PushQueueName = "push-queue"

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Provides the push notification worker",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run notify worker",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					pushManager := &PushManager{}
					if err := pushManager.Setup(); err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						QueueName:       PushQueueName,
						NumberConsumers: 5,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewPushBatchConsumer(pushManager),
					}
					redisConsumer.Setup()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
