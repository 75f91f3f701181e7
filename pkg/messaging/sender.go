package messaging

import (
	"fmt"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
)

// topicName is used both as exchange and routing key, "<prefix>_<topic>".
func topicName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// DefineTopic declares the durable topic exchange for topic and a queue of
// the same name, so events published before any instance listens are kept.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := topicName(prefix, topic)
	if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

// SendChange publishes data as json on the topic's exchange. It opens a
// short lived channel per call.
func SendChange[V any](c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	body, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := topicName(prefix, topic)
	return ch.Publish(name, name, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// NotifyCatalogChanged tells every running instance to reload its catalog.
func NotifyCatalogChanged(c *amqp.Connection, prefix string, change CatalogChange) error {
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := DefineTopic(ch, prefix, CatalogChanged); err != nil {
		return err
	}
	return SendChange(c, prefix, CatalogChanged, change)
}
