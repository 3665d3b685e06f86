package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	"github.com/entoun8/alshami-store/pkg/notification/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
)

type NotificationService interface {
	// OrderPaid sends the order confirmation email. At-least-once
	// delivery is acceptable; the dedupe key lets the provider collapse
	// retries of the same paid transition.
	OrderPaid(ctx context.Context, order *ordermodel.Order, user *identitymodel.UserProfile) error
}

func NewNotificationService(repo model.NotificationRepository, sender model.NotificationSender, dispatcher common.EventDispatcher) NotificationService {
	return &notificationService{repo: repo, sender: sender, dispatcher: dispatcher}
}

type notificationService struct {
	repo       model.NotificationRepository
	sender     model.NotificationSender
	dispatcher common.EventDispatcher
}

func (s *notificationService) OrderPaid(ctx context.Context, order *ordermodel.Order, user *identitymodel.UserProfile) error {
	subject, body, err := buildOrderEmail(order, user)
	if err != nil {
		return err
	}

	dedupeKey := order.ID.String()
	if order.PaidAt != nil {
		dedupeKey = fmt.Sprintf("%s-%d", order.ID, order.PaidAt.Unix())
	}

	return s.orchestrateSend(ctx, order.UserID, user.Email, subject, body, dedupeKey)
}

func (s *notificationService) orchestrateSend(ctx context.Context, userID uuid.UUID, recipient, subject, body, dedupeKey string) error {
	notifID, err := s.repo.NextID()
	if err != nil {
		return err
	}

	notification := &model.Notification{
		ID:               notifID,
		UserID:           userID,
		Channel:          model.Email,
		RecipientAddress: recipient,
		Subject:          subject,
		Body:             body,
		DedupeKey:        dedupeKey,
		Status:           model.Pending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	sendErr := s.sender.Send(ctx, recipient, subject, body, dedupeKey)

	if sendErr != nil {
		notification.Status = model.Failed
		notification.FailureReason = sendErr.Error()
		_ = s.dispatcher.Dispatch(model.NotificationFailed{
			NotificationID: notifID, UserID: userID, Channel: model.Email, Reason: sendErr.Error(),
		})
	} else {
		now := time.Now().UTC()
		notification.Status = model.Sent
		notification.SentAt = &now
		_ = s.dispatcher.Dispatch(model.NotificationSent{
			NotificationID: notifID, UserID: userID, Channel: model.Email,
		})
	}

	if err := s.repo.Update(notification); err != nil {
		return err
	}
	return sendErr
}
