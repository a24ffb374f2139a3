package stripewebhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

var ErrMalformedEvent = errors.New("malformed event payload")

// InboundEvent is the closed set of provider events the pipeline understands.
// The variants are CheckoutCompleted, PaymentIntentSucceeded,
// SubscriptionChanged and Unhandled.
type InboundEvent interface {
	EventID() string
	EventType() string
	inboundEvent()
}

// EventMeta carries the provider-assigned identity of a delivery.
type EventMeta struct {
	ID   string
	Type string
}

func (m EventMeta) EventID() string   { return m.ID }
func (m EventMeta) EventType() string { return m.Type }
func (EventMeta) inboundEvent()       {}

// CheckoutCompleted is emitted for completed sessions and for sessions whose
// asynchronous payment later succeeded.
type CheckoutCompleted struct {
	EventMeta
	Session stripe.CheckoutSession
}

type PaymentIntentSucceeded struct {
	EventMeta
	PaymentIntent stripe.PaymentIntent
}

// SubscriptionChanged is accepted but carries no business effect.
type SubscriptionChanged struct {
	EventMeta
	Subscription stripe.Subscription
}

// Unhandled is every other event type.
type Unhandled struct {
	EventMeta
}

// DecodeEvent maps a verified provider event onto its typed variant.
func DecodeEvent(event stripe.Event) (InboundEvent, error) {
	meta := EventMeta{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := decodeObject(event, &session); err != nil {
			return nil, err
		}
		return CheckoutCompleted{EventMeta: meta, Session: session}, nil

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := decodeObject(event, &intent); err != nil {
			return nil, err
		}
		return PaymentIntentSucceeded{EventMeta: meta, PaymentIntent: intent}, nil

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := decodeObject(event, &sub); err != nil {
			return nil, err
		}
		return SubscriptionChanged{EventMeta: meta, Subscription: sub}, nil

	default:
		return Unhandled{EventMeta: meta}, nil
	}
}

func decodeObject(event stripe.Event, dst any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%w: %s has no data object", ErrMalformedEvent, event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformedEvent, event.Type, err)
	}
	return nil
}
