package notify

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/sourcegraph/conc/pool"
	"google.golang.org/api/option"
)

// FCM rejects multicast messages with more than 500 tokens.
const multicastChunkSize = 500

const maxConcurrentChunks = 4

// Real FCM registration tokens are long; anything shorter is a placeholder
// some client wrote before it obtained a token.
const minimumTokenLength = 50

var placeholderTokens = map[string]bool{
	"null":      true,
	"undefined": true,
	"unknown":   true,
	"none":      true,
	"test":      true,
}

type PushManager struct {
	FirebaseApp *firebase.App
}

func (m *PushManager) Setup() error {
	firebaseAuthKey := os.Getenv("SCHOOLTRACK_FIREBASE_SERVICE_ACCOUNT")

	decodedKey, err := base64.StdEncoding.DecodeString(firebaseAuthKey)
	if err != nil {
		return err
	}

	opts := []option.ClientOption{option.WithCredentialsJSON(decodedKey)}

	app, err := firebase.NewApp(context.Background(), nil, opts...)
	if err != nil {
		return err
	}

	m.FirebaseApp = app

	return nil
}

// SendPushTask delivers one queued push task. Delivery is best effort:
// partial failures are expected (expired tokens, offline devices) and only a
// completely unreachable gateway is treated as a configuration problem.
func (m *PushManager) SendPushTask(task models.PushTask) {
	deviceTokens := FilterDeviceTokens(task.DeviceTokens)
	if len(deviceTokens) == 0 {
		log.Debug().Str("title", task.Title).Msg("Push task has no valid device tokens")
		return
	}

	fcmClient, err := m.FirebaseApp.Messaging(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Push gateway unavailable")
		return
	}

	sendPool := pool.New().WithMaxGoroutines(maxConcurrentChunks)

	for start := 0; start < len(deviceTokens); start += multicastChunkSize {
		end := start + multicastChunkSize
		if end > len(deviceTokens) {
			end = len(deviceTokens)
		}
		chunk := deviceTokens[start:end]

		sendPool.Go(func() {
			response, err := fcmClient.SendEachForMulticast(context.Background(), &messaging.MulticastMessage{
				Tokens: chunk,
				Notification: &messaging.Notification{
					Title: task.Title,
					Body:  task.Message,
				},
				Data: task.Data,
			})

			if err != nil {
				log.Error().Err(err).Msg("Failed to reach push gateway")
				return
			}

			if response.FailureCount > 0 {
				log.Debug().
					Int("success", response.SuccessCount).
					Int("failure", response.FailureCount).
					Msg("Partial push delivery")
			}
		})
	}

	sendPool.Wait()

	log.Info().Int("devices", len(deviceTokens)).Str("title", task.Title).Msg("Sent push notifications")
}

// FilterDeviceTokens drops tokens that cannot possibly be valid FCM
// registration tokens before any gateway call is attempted.
func FilterDeviceTokens(deviceTokens []string) []string {
	var valid []string

	for _, token := range deviceTokens {
		trimmed := strings.TrimSpace(token)

		if len(trimmed) < minimumTokenLength {
			continue
		}
		if placeholderTokens[strings.ToLower(trimmed)] {
			continue
		}

		valid = append(valid, trimmed)
	}

	return valid
}
