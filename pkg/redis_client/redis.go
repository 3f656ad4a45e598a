package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["SCHOOLTRACK_REDIS_ADDRESS"] != "" {
		address = env["SCHOOLTRACK_REDIS_ADDRESS"]
	}

	if env["SCHOOLTRACK_REDIS_PASSWORD"] != "" {
		password = env["SCHOOLTRACK_REDIS_PASSWORD"]
	}

	if env["SCHOOLTRACK_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["SCHOOLTRACK_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	queueErrors := make(chan error, 10)
	go func() {
		for queueError := range queueErrors {
			log.Error().Err(queueError).Msg("Queue connection error")
		}
	}()

	QueueConnection, err = rmq.OpenConnectionWithRedisClient("schooltrack", Client, queueErrors)
	if err != nil {
		return err
	}

	return nil
}
