package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
)

// EventTypePurchaseRecorded tags messages announcing a new purchase.
const EventTypePurchaseRecorded = "purchase.recorded"

// PurchaseRecordedEvent is the message body published for each new purchase.
type PurchaseRecordedEvent struct {
	PurchaseID      string    `json:"purchaseId"`
	UserID          *string   `json:"userId"`
	UserEmail       string    `json:"userEmail"`
	StripeSessionID string    `json:"stripeSessionId"`
	StripeProductID string    `json:"stripeProductId"`
	ServiceID       *string   `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	ServiceCategory string    `json:"category"`
	Quantity        int64     `json:"quantity"`
	TotalAmount     int64     `json:"totalAmount"`
	Currency        string    `json:"currency"`
	PaymentStatus   string    `json:"paymentStatus"`
	PurchasedAt     time.Time `json:"purchasedAt"`
}

type messageSender interface {
	Send(ctx context.Context, msg *pubsub.Message) (string, error)
}

type topicSender struct {
	publisher *pubsub.Publisher
}

func (s topicSender) Send(ctx context.Context, msg *pubsub.Message) (string, error) {
	return s.publisher.Publish(ctx, msg).Get(ctx)
}

// PurchasePublisher publishes purchase.recorded messages. A nil publisher, or
// one built without a topic, drops messages.
type PurchasePublisher struct {
	sender messageSender
}

func NewPurchasePublisher(publisher *pubsub.Publisher) *PurchasePublisher {
	if publisher == nil {
		return &PurchasePublisher{}
	}
	return &PurchasePublisher{sender: topicSender{publisher: publisher}}
}

// PurchaseRecorded publishes p and waits for the server acknowledgement.
func (p *PurchasePublisher) PurchaseRecorded(ctx context.Context, purchase models.Purchase) error {
	if p == nil || p.sender == nil {
		return nil
	}
	msg, err := purchaseMessage(purchase)
	if err != nil {
		return err
	}
	if _, err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for purchase %s: %w", EventTypePurchaseRecorded, purchase.ID, err)
	}
	return nil
}

func purchaseMessage(p models.Purchase) (*pubsub.Message, error) {
	body, err := json.Marshal(PurchaseRecordedEvent{
		PurchaseID:      p.ID,
		UserID:          p.UserID,
		UserEmail:       p.UserEmail,
		StripeSessionID: p.StripeSessionID,
		StripeProductID: p.StripeProductID,
		ServiceID:       p.ServiceID,
		ServiceName:     p.ServiceName,
		ServiceCategory: p.ServiceCategory,
		Quantity:        p.Quantity,
		TotalAmount:     p.TotalAmount,
		Currency:        p.Currency,
		PaymentStatus:   p.PaymentStatus.String(),
		PurchasedAt:     p.PurchasedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal purchase event: %w", err)
	}
	return &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type":  EventTypePurchaseRecorded,
			"purchase_id": p.ID,
			"session_id":  p.StripeSessionID,
		},
	}, nil
}
