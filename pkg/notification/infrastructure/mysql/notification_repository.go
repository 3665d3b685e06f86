package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/entoun8/alshami-store/pkg/notification/domain/model"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var _ model.NotificationRepository = &NotificationRepository{}

type notificationRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	Channel       int            `db:"channel"`
	Recipient     string         `db:"recipient"`
	Subject       string         `db:"subject"`
	Body          string         `db:"body"`
	DedupeKey     string         `db:"dedupe_key"`
	Status        int            `db:"status"`
	FailureReason sql.NullString `db:"failure_reason"`
	CreatedAt     time.Time      `db:"created_at"`
	SentAt        *time.Time     `db:"sent_at"`
}

func (r *NotificationRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	_, err := r.db.NamedExec(`
		INSERT INTO notification (id, user_id, channel, recipient, subject, body, dedupe_key, status, failure_reason, created_at, sent_at)
		VALUES (:id, :user_id, :channel, :recipient, :subject, :body, :dedupe_key, :status, :failure_reason, :created_at, :sent_at)`,
		toNotificationRow(notification))
	return errors.Wrap(err, "insert notification")
}

func (r *NotificationRepository) Update(notification *model.Notification) error {
	_, err := r.db.NamedExec(`
		UPDATE notification
		SET status = :status, failure_reason = :failure_reason, sent_at = :sent_at
		WHERE id = :id`,
		toNotificationRow(notification))
	return errors.Wrap(err, "update notification")
}

func toNotificationRow(notification *model.Notification) notificationRow {
	row := notificationRow{
		ID:        notification.ID.String(),
		UserID:    notification.UserID.String(),
		Channel:   int(notification.Channel),
		Recipient: notification.RecipientAddress,
		Subject:   notification.Subject,
		Body:      notification.Body,
		DedupeKey: notification.DedupeKey,
		Status:    int(notification.Status),
		CreatedAt: notification.CreatedAt,
		SentAt:    notification.SentAt,
	}
	if notification.FailureReason != "" {
		row.FailureReason = sql.NullString{String: notification.FailureReason, Valid: true}
	}
	return row
}
