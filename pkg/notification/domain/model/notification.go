package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationChannel int

const (
	Email NotificationChannel = iota
)

type NotificationStatus int

const (
	Pending NotificationStatus = iota
	Sent
	Failed
)

type Notification struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Channel          NotificationChannel
	RecipientAddress string
	Subject          string
	Body             string
	DedupeKey        string
	Status           NotificationStatus
	FailureReason    string
	CreatedAt        time.Time
	SentAt           *time.Time
}

type NotificationRepository interface {
	NextID() (uuid.UUID, error)
	Create(notification *Notification) error
	Update(notification *Notification) error
}

// NotificationSender delivers a single message. The dedupe key lets the
// provider collapse duplicate sends when a webhook is retried.
type NotificationSender interface {
	Send(ctx context.Context, recipient, subject, body, dedupeKey string) error
}
