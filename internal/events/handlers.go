package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/guntanalaganesh-web/shoe-store/internal/dedup"
	"github.com/guntanalaganesh-web/shoe-store/internal/notifications"
)

// NotificationsConsumerName keys this consumer's dedup checkpoints.
const NotificationsConsumerName = "notifications"

var notificationBindings = []string{
	OrderPlacedRoutingKey,
	OrderCancelledRoutingKey,
	StockDepletedRoutingKey,
}

// TxBeginner matches *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// StartNotificationsConsumer runs the back-office feed materializer: it
// turns order and stock events into notification rows.
func StartNotificationsConsumer(ctx context.Context, conn *amqp.Connection, db TxBeginner, checkpoints dedup.Repository, feed notifications.Repository, logger *log.Logger) error {
	handler := NotificationsHandler(db, checkpoints, feed, logger)
	return StartConsumer(ctx, conn, NotificationsQueue, notificationBindings, handler, logger)
}

// NotificationsHandler deduplicates by the envelope's partition sequence and
// inserts the notification and the checkpoint advance in one transaction, so
// a redelivery after a crash can never double-insert.
func NotificationsHandler(db TxBeginner, checkpoints dedup.Repository, feed notifications.Repository, logger *log.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		env, err := parseEnvelope(body)
		if err != nil {
			return err
		}

		n, err := notificationFor(env)
		if err != nil {
			return err
		}
		if n == nil {
			logger.Printf("skip %s event: no notification mapped", env.EventName)
			return nil
		}

		sequenced := env.PartitionKey != "" && env.Sequence != 0
		if sequenced {
			last, seen, err := checkpoints.LastSequence(ctx, NotificationsConsumerName, env.PartitionKey)
			if err != nil {
				return err
			}
			if seen {
				if env.Sequence <= last {
					logger.Printf("skip duplicate event=%s partition=%s seq=%d last=%d",
						env.EventName, env.PartitionKey, env.Sequence, last)
					return nil
				}
				if env.Sequence > last+1 {
					logger.Printf("warning: sequence gap partition=%s seq=%d last=%d",
						env.PartitionKey, env.Sequence, last)
				}
			}
		}

		tx, err := db.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := feed.Insert(ctx, tx, n); err != nil {
			return err
		}
		if sequenced {
			if err := checkpoints.SetLastSequence(ctx, tx, NotificationsConsumerName, env.PartitionKey, env.Sequence); err != nil {
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit notification: %w", err)
		}
		return nil
	}
}

func notificationFor(env RawEnvelope) (*notifications.Notification, error) {
	switch env.EventName {
	case OrderPlacedEventName:
		var p OrderPlacedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.EventName, err)
		}
		return &notifications.Notification{
			ID:      uuid.NewString(),
			Kind:    notifications.KindOrderPlaced,
			Message: fmt.Sprintf("New order %s placed, total %s", p.OrderNumber, p.Total.StringFixed(2)),
			OrderID: p.OrderID,
		}, nil

	case OrderCancelledEventName:
		var p OrderCancelledPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.EventName, err)
		}
		return &notifications.Notification{
			ID:      uuid.NewString(),
			Kind:    notifications.KindOrderCancelled,
			Message: fmt.Sprintf("Order %s cancelled by the customer", p.OrderNumber),
			OrderID: p.OrderID,
		}, nil

	case StockDepletedEventName:
		var p StockDepletedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.EventName, err)
		}
		return &notifications.Notification{
			ID:        uuid.NewString(),
			Kind:      notifications.KindStockDepleted,
			Message:   fmt.Sprintf("%s size %v is sold out", p.Name, p.Size),
			OrderID:   p.OrderID,
			ProductID: p.ProductID,
		}, nil
	}
	return nil, nil
}
