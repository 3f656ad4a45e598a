// Package consumer runs batched rmq queue consumers with an attached stats
// and health endpoint.
package consumer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/redis_client"
	"github.com/schooltrack/schooltrack/pkg/util"
)

type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer
}

func (c *RedisConsumer) Setup() {
	c.startConsumers()
	go c.startStatsServer()
}

func (c *RedisConsumer) startConsumers() {
	log.Info().Str("queue", c.QueueName).Int("consumers", c.NumberConsumers).Msg("Starting consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(c.QueueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < c.NumberConsumers; i++ {
		if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", c.QueueName, i), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
			panic(err)
		}
	}
}

func (c *RedisConsumer) startStatsServer() {
	listen := util.GetEnvironmentVariable("SCHOOLTRACK_STATS_LISTEN", ":3333")
	endpoint := fmt.Sprintf("/%s/stats", c.QueueName)

	http.Handle(endpoint, NewStatsHandler(redis_client.QueueConnection))
	http.Handle("/health", NewHealthHandler())

	log.Info().Str("listen", listen).Str("endpoint", endpoint).Msg("Stats server listening")
	if err := http.ListenAndServe(listen, nil); err != nil {
		panic(err)
	}
}
