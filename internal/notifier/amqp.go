package notifier

import (
	"context"

	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/pkg/rabbitmq"
)

// Routing keys on the bookings exchange, one per event kind.
var routingKeys = map[EventKind]string{
	CustomerConfirmation: "booking.confirmation",
	CustomerDenial:       "booking.denial",
	AdminApprovalRequest: "booking.approval_request",
}

// AMQPNotifier publishes notification events to the message broker.
type AMQPNotifier struct {
	publisher *rabbitmq.Publisher
}

func NewAMQPNotifier(publisher *rabbitmq.Publisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher}
}

func (n *AMQPNotifier) Notify(ctx context.Context, kind EventKind, booking *models.Booking, link *models.BookingLink, calendar *models.CalendarConfig, links ApprovalLinks) error {
	return n.publisher.Publish(ctx, routingKeys[kind], NewEvent(kind, booking, link, calendar, links))
}
