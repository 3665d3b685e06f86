package tests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	"github.com/entoun8/alshami-store/pkg/notification/domain/model"
	"github.com/entoun8/alshami-store/pkg/notification/domain/service"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
)

func setup(t *testing.T) (service.NotificationService, *mockNotificationRepository, *mockSender, *mockEventDispatcher) {
	repo := &mockNotificationRepository{store: make(map[uuid.UUID]*model.Notification)}
	sender := &mockSender{}
	dispatcher := &mockEventDispatcher{}
	notificationService := service.NewNotificationService(repo, sender, dispatcher)
	return notificationService, repo, sender, dispatcher
}

func paidOrder() (*ordermodel.Order, *identitymodel.UserProfile) {
	paidAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	order := &ordermodel.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		ShippingAddress: identitymodel.ShippingAddress{
			FullName:      "Amal Haddad",
			StreetAddress: "12 Wattle Street",
			City:          "Sydney",
			PostalCode:    "2000",
			Country:       "Australia",
		},
		PaymentMethod: "Stripe",
		Items: []ordermodel.Item{{
			ProductID: uuid.New(),
			Name:      "Yemeni Coffee",
			Slug:      "yemeni-coffee",
			Image:     "/images/yemeni-coffee.jpg",
			Price:     "28.50",
			Qty:       2,
		}},
		ItemsPrice:    "57.00",
		ShippingPrice: "10.00",
		TaxPrice:      "8.55",
		TotalPrice:    "75.55",
		IsPaid:        true,
		PaidAt:        &paidAt,
	}
	user := &identitymodel.UserProfile{
		ID:       order.UserID,
		Email:    "amal@example.com",
		FullName: "Amal Haddad",
	}
	return order, user
}

func TestOrderPaid(t *testing.T) {
	t.Run("Sends the confirmation and records it", func(t *testing.T) {
		notificationService, repo, sender, dispatcher := setup(t)
		order, user := paidOrder()

		require.NoError(t, notificationService.OrderPaid(context.Background(), order, user))

		assert.Equal(t, 1, sender.calls)
		assert.Equal(t, "amal@example.com", sender.lastRecipient)
		assert.Contains(t, sender.lastSubject, "Order Confirmation")
		assert.Contains(t, sender.lastBody, "Yemeni Coffee")
		assert.Contains(t, sender.lastBody, "57.00")
		assert.Contains(t, sender.lastBody, "75.55")
		assert.Contains(t, sender.lastBody, "Sydney")

		require.Len(t, repo.store, 1)
		for _, saved := range repo.store {
			assert.Equal(t, model.Sent, saved.Status)
			assert.NotNil(t, saved.SentAt)
			assert.Equal(t, order.UserID, saved.UserID)
		}

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.NotificationSent)
		assert.True(t, ok)
	})

	t.Run("Dedupe key pins order and paid time", func(t *testing.T) {
		notificationService, _, sender, _ := setup(t)
		order, user := paidOrder()

		require.NoError(t, notificationService.OrderPaid(context.Background(), order, user))

		expected := fmt.Sprintf("%s-%d", order.ID, order.PaidAt.Unix())
		assert.Equal(t, expected, sender.lastDedupeKey)
	})

	t.Run("Subject carries the short order id", func(t *testing.T) {
		notificationService, _, sender, _ := setup(t)
		order, user := paidOrder()

		require.NoError(t, notificationService.OrderPaid(context.Background(), order, user))

		short := strings.ToUpper(order.ID.String()[:8])
		assert.Equal(t, "Order Confirmation - #"+short, sender.lastSubject)
		assert.Contains(t, sender.lastBody, "#"+short)
	})

	t.Run("Send failure is recorded and returned", func(t *testing.T) {
		notificationService, repo, sender, dispatcher := setup(t)
		sender.err = errors.New("provider is down")
		order, user := paidOrder()

		err := notificationService.OrderPaid(context.Background(), order, user)

		require.Error(t, err)
		require.Len(t, repo.store, 1)
		for _, saved := range repo.store {
			assert.Equal(t, model.Failed, saved.Status)
			assert.Equal(t, "provider is down", saved.FailureReason)
			assert.Nil(t, saved.SentAt)
		}

		require.Len(t, dispatcher.events, 1)
		failed, ok := dispatcher.events[0].(model.NotificationFailed)
		require.True(t, ok)
		assert.Equal(t, "provider is down", failed.Reason)
	})
}

type mockNotificationRepository struct {
	store map[uuid.UUID]*model.Notification
}

func (m *mockNotificationRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }
func (m *mockNotificationRepository) Create(notification *model.Notification) error {
	copied := *notification
	m.store[notification.ID] = &copied
	return nil
}
func (m *mockNotificationRepository) Update(notification *model.Notification) error {
	copied := *notification
	m.store[notification.ID] = &copied
	return nil
}

type mockSender struct {
	calls         int
	lastRecipient string
	lastSubject   string
	lastBody      string
	lastDedupeKey string
	err           error
}

func (m *mockSender) Send(_ context.Context, recipient, subject, body, dedupeKey string) error {
	m.calls++
	m.lastRecipient = recipient
	m.lastSubject = subject
	m.lastBody = body
	m.lastDedupeKey = dedupeKey
	return m.err
}

type mockEventDispatcher struct {
	events []common.Event
}

func (m *mockEventDispatcher) Dispatch(event common.Event) error {
	m.events = append(m.events, event)
	return nil
}
func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
