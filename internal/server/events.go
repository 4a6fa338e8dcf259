package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"watchstore/internal/models"
	"watchstore/internal/notify"

	"github.com/streadway/amqp"
)

// OrderEventHandler returns the consumer callback that emails a confirmation
// for every new order. Mail failures are logged and the message is still acked.
func OrderEventHandler(mailer notify.Mailer) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event models.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("invalid order event: %w", err)
		}
		if event.Event != models.EventOrderCreated {
			log.Printf("Order %s: %s to %s", event.OrderID, event.Event, event.Status)
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mailer.SendOrderConfirmation(ctx, event); err != nil {
			log.Printf("Order confirmation for %s not sent: %v", event.OrderID, err)
		}
		return nil
	}
}
