package main

import (
	"context"

	"github.com/matst80/tyre-finder/pkg/messaging"
	"github.com/matst80/tyre-finder/pkg/server"
	"github.com/matst80/tyre-finder/pkg/tracking"
	"github.com/matst80/tyre-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// broker is the optional rabbit side of serve: tracking events out, catalog
// changes in and out.
type broker struct {
	conn    *amqp.Connection
	prefix  string
	tracker *tracking.RabbitTracking
}

func connectBroker(url, prefix string) (*broker, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return nil, err
	}
	b := &broker{conn: conn, prefix: prefix}
	b.tracker, err = tracking.NewRabbitTracking(url, prefix)
	if err != nil {
		log.Warnf("Failed to connect to rabbitmq for tracking: %v", err)
	}
	return b, nil
}

// Tracking returns nil when tracking could not connect, so handlers skip it.
func (b *broker) Tracking() types.Tracking {
	if b == nil || b.tracker == nil {
		return nil
	}
	return b.tracker
}

func (b *broker) Notify(change messaging.CatalogChange) error {
	return messaging.NotifyCatalogChanged(b.conn, b.prefix, change)
}

func (b *broker) ListenForCatalogChanges(app *server.App) error {
	err := messaging.ListenForCatalogChanges(b.conn, b.prefix, app.OnCatalogChange)
	if err != nil {
		return err
	}
	log.Infof("Listening for %s on %s", messaging.CatalogChanged, b.prefix)
	return nil
}

func (b *broker) Close(ctx context.Context) error {
	if b.tracker != nil {
		b.tracker.Close()
	}
	return b.conn.Close()
}
