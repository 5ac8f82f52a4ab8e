package services

import (
	"context"
	"log"
	"strings"

	"firebase.google.com/go/messaging"

	"cuidaBack/internal/models"
)

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenStore resolves a user's FCM registration token.
type TokenStore interface {
	GetFCMToken(ctx context.Context, userID string) (string, error)
}

type NotificationService struct {
	Client  MessageSender
	Tokens  TokenStore
	InfoLog *log.Logger
}

// SendToUser pushes a notification to the user's registered device.
func (s *NotificationService) SendToUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	token, err := s.Tokens.GetFCMToken(ctx, userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return models.ErrMissingFCMToken
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := s.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	if s.InfoLog != nil {
		s.InfoLog.Printf("push delivered to user %s: %s", userID, response)
	}
	return nil
}
