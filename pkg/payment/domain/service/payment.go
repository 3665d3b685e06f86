package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
	"github.com/entoun8/alshami-store/pkg/payment/domain/model"
)

// OrderStore is the slice of order persistence the orchestrator drives.
type OrderStore interface {
	Find(id uuid.UUID) (*ordermodel.Order, error)
	MarkPaid(id uuid.UUID, paidAt time.Time) (bool, error)
	SetPaymentIntent(id uuid.UUID, intentID string) error
}

type UserFinder interface {
	Find(id uuid.UUID) (*identitymodel.UserProfile, error)
}

// Notifier fires the post-payment side effect. Its failures never roll
// back the paid transition.
type Notifier interface {
	OrderPaid(ctx context.Context, order *ordermodel.Order, user *identitymodel.UserProfile) error
}

type PaymentService interface {
	// CreatePaymentIntent produces a provider intent for an unpaid
	// Stripe order and returns the client secret.
	CreatePaymentIntent(ctx context.Context, orderID uuid.UUID) (*model.Intent, error)
	// HandleWebhook applies a provider callback. It returns
	// model.ErrInvalidSignature for a bad signature and a wrapped error
	// for a persistence failure; any other outcome is a no-op success.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// VerifyRedirectReturn checks the success-page navigation against
	// the provider. It never mutates order state.
	VerifyRedirectReturn(ctx context.Context, orderID uuid.UUID, intentID string) (bool, error)
}

func NewPaymentService(orders OrderStore, users UserFinder, gateway model.PaymentGateway, notifier Notifier, currency string, dispatcher common.EventDispatcher) PaymentService {
	return &paymentService{
		orders:     orders,
		users:      users,
		gateway:    gateway,
		notifier:   notifier,
		currency:   currency,
		dispatcher: dispatcher,
	}
}

type paymentService struct {
	orders     OrderStore
	users      UserFinder
	gateway    model.PaymentGateway
	notifier   Notifier
	currency   string
	dispatcher common.EventDispatcher
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, orderID uuid.UUID) (*model.Intent, error) {
	order, err := s.orders.Find(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, model.ErrAlreadyPaid
	}
	if order.PaymentMethod != "Stripe" {
		return nil, model.ErrUnsupportedMethod
	}

	amountMinor, err := toMinorUnits(order.TotalPrice)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, orderID, amountMinor, s.currency)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentIntent(orderID, intent.ID); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.PaymentIntentCreated{OrderID: orderID, IntentID: intent.ID, AmountMinor: amountMinor})
	return intent, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	if event.Type != model.EventPaymentSucceeded {
		return nil
	}
	if event.OrderID == "" {
		return nil
	}
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.WithField("orderId", event.OrderID).Warn("webhook carried an unparsable order id")
		return nil
	}

	transitioned, err := s.orders.MarkPaid(orderID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "mark order paid")
	}
	if !transitioned {
		// Replayed delivery for an already-paid order: ack without side
		// effects.
		return nil
	}

	_ = s.dispatcher.Dispatch(model.OrderPaid{OrderID: orderID, IntentID: event.IntentID})

	s.notifyPaid(ctx, orderID)
	return nil
}

func (s *paymentService) VerifyRedirectReturn(ctx context.Context, orderID uuid.UUID, intentID string) (bool, error) {
	order, err := s.orders.Find(orderID)
	if err != nil {
		return false, err
	}
	if order.IsPaid {
		return false, nil
	}

	status, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return false, err
	}
	return status.OrderID == orderID.String() && status.Status == model.IntentStatusSucceeded, nil
}

// notifyPaid loads the order with its user and dispatches the
// confirmation email. Failures are logged and swallowed so the webhook
// still acknowledges the persisted transition.
func (s *paymentService) notifyPaid(ctx context.Context, orderID uuid.UUID) {
	order, err := s.orders.Find(orderID)
	if err != nil {
		log.WithError(err).WithField("orderId", orderID).Error("load paid order for notification")
		return
	}
	user, err := s.users.Find(order.UserID)
	if err != nil {
		log.WithError(err).WithField("orderId", orderID).Error("load buyer for notification")
		return
	}
	if err := s.notifier.OrderPaid(ctx, order, user); err != nil {
		log.WithError(err).WithField("orderId", orderID).Error("send order confirmation")
	}
}

func toMinorUnits(price string) (int64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, errors.Wrap(err, "parse order total")
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
