package services

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/messaging"

	"cuidaBack/internal/models"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (s *fakeSender) Send(ctx context.Context, m *messaging.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, m)
	return "projects/x/messages/1", nil
}

type fakeTokenStore struct {
	tokens map[string]string
}

func (s *fakeTokenStore) GetFCMToken(ctx context.Context, userID string) (string, error) {
	token, ok := s.tokens[userID]
	if !ok {
		return "", models.ErrUserNotFound
	}
	return token, nil
}

func TestSendToUser(t *testing.T) {
	t.Run("delivers to the registered token", func(t *testing.T) {
		sender := &fakeSender{}
		svc := &NotificationService{
			Client: sender,
			Tokens: &fakeTokenStore{tokens: map[string]string{"u1": "tok-1"}},
		}

		err := svc.SendToUser(context.Background(), "u1", "Pago confirmado", "Listo", map[string]string{"k": "v"})
		if err != nil {
			t.Fatalf("SendToUser: %v", err)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("messages sent = %d", len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.Token != "tok-1" {
			t.Fatalf("token = %q", msg.Token)
		}
		if msg.Notification.Title != "Pago confirmado" || msg.Notification.Body != "Listo" {
			t.Fatalf("notification = %+v", msg.Notification)
		}
		if msg.Android == nil || msg.Android.Priority != "high" {
			t.Fatal("android config missing")
		}
	})

	t.Run("user without token", func(t *testing.T) {
		svc := &NotificationService{
			Client: &fakeSender{},
			Tokens: &fakeTokenStore{tokens: map[string]string{"u1": ""}},
		}
		err := svc.SendToUser(context.Background(), "u1", "t", "b", nil)
		if !errors.Is(err, models.ErrMissingFCMToken) {
			t.Fatalf("expected ErrMissingFCMToken, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &NotificationService{
			Client: &fakeSender{},
			Tokens: &fakeTokenStore{tokens: map[string]string{}},
		}
		err := svc.SendToUser(context.Background(), "ghost", "t", "b", nil)
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
