package consumer

import (
	"encoding/json"
	"log"

	"github.com/calbook/booking-engine/internal/notifier"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationConsumer drains the notification queue and writes each
// event to the log. It is the delivery sink for local development;
// production deployments point a real dispatch service at the same
// exchange instead.
type NotificationConsumer struct{}

func NewNotificationConsumer() *NotificationConsumer {
	return &NotificationConsumer{}
}

func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		log.Println("[NotificationConsumer] channel closed, stopping consumer")
	}()
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	var ev notifier.Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		log.Printf("[NotificationConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	switch ev.Kind {
	case notifier.AdminApprovalRequest:
		log.Printf("[NotificationConsumer] %s booking=%s %s %s approve=%s deny=%s",
			ev.Kind, ev.BookingID, ev.SlotDate, ev.SlotTime, ev.ApproveURL, ev.DenyURL)
	default:
		log.Printf("[NotificationConsumer] %s booking=%s %s %s customer=%s",
			ev.Kind, ev.BookingID, ev.SlotDate, ev.SlotTime, ev.CustomerEmail)
	}
	msg.Ack(false)
}
