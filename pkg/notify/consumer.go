package notify

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/models"
)

type PushBatchConsumer struct {
	PushManager *PushManager
}

func NewPushBatchConsumer(pushManager *PushManager) *PushBatchConsumer {
	return &PushBatchConsumer{PushManager: pushManager}
}

func (c *PushBatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var pushTask models.PushTask
		if err := json.Unmarshal([]byte(payload), &pushTask); err != nil {
			log.Error().Err(err).Msg("Failed to decode push task")
			continue
		}

		c.PushManager.SendPushTask(pushTask)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume from queue")
		}
	}
}
