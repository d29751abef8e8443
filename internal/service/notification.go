package service

import (
	"context"
	"strings"

	"quizcraft/internal/domain"
	"quizcraft/internal/dto"
)

// NotificationService manages per-user notification subscriptions.
type NotificationService interface {
	Subscribe(ctx context.Context, userID, email string) (*dto.SubscribeResponse, error)
}

type notificationService struct {
	notifier domain.Notifier
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(notifier domain.Notifier) NotificationService {
	return &notificationService{notifier: notifier}
}

func (s *notificationService) Subscribe(ctx context.Context, userID, email string) (*dto.SubscribeResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("A valid email address is required")
	}

	created, err := s.notifier.Subscribe(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if !created {
		return &dto.SubscribeResponse{Message: "Already subscribed", Subscribed: false}, nil
	}
	return &dto.SubscribeResponse{Message: "Subscribed to quiz notifications", Subscribed: true}, nil
}
