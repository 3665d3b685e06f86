package stripe

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/entoun8/alshami-store/pkg/payment/domain/model"
)

const orderIDMetadataKey = "orderId"

type Gateway struct {
	api           *client.API
	webhookSecret string
}

func NewGateway(secretKey, webhookSecret string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api, webhookSecret: webhookSecret}
}

var _ model.PaymentGateway = &Gateway{}

func (g *Gateway) CreateIntent(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) (*model.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, orderID.String())

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return &model.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.Amount,
	}, nil
}

func (g *Gateway) RetrieveIntent(ctx context.Context, intentID string) (*model.IntentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, errors.Wrap(err, "retrieve payment intent")
	}
	return &model.IntentStatus{
		ID:      intent.ID,
		Status:  string(intent.Status),
		OrderID: intent.Metadata[orderIDMetadataKey],
	}, nil
}

// ParseWebhook verifies the provider signature over the raw payload
// bytes. The payload must not be re-serialised before it reaches here.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*model.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, errors.Wrap(model.ErrInvalidSignature, err.Error())
	}

	parsed := &model.WebhookEvent{Type: string(event.Type)}
	if parsed.Type != model.EventPaymentSucceeded {
		return parsed, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, errors.Wrap(err, "unmarshal payment intent event")
	}
	parsed.IntentID = intent.ID
	parsed.OrderID = intent.Metadata[orderIDMetadataKey]
	return parsed, nil
}
