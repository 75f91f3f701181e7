package messaging

import (
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := topicName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes topic in the background until the channel closes.
// Messages the handler fails on are rejected without requeue.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, handler func(amqp.Delivery) error) error {
	msgs, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func() {
		defer ch.Close()
		for d := range msgs {
			if err := handler(d); err != nil {
				log.Errorf("Error processing %s message: %v", topic, err)
				if err := d.Nack(false, false); err != nil {
					log.Warnf("Failed to reject message: %v", err)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Warnf("Failed to ack message: %v", err)
			}
		}
		log.Infof("Stopped listening to %s", topic)
	}()
	return nil
}

// DecodeCatalogChange reads a catalog_changed message body. An empty body is
// a plain reload request.
func DecodeCatalogChange(body []byte) (CatalogChange, error) {
	var change CatalogChange
	if len(body) == 0 {
		return change, nil
	}
	err := sonic.Unmarshal(body, &change)
	return change, err
}

// ListenForCatalogChanges calls onChange for every catalog_changed message.
func ListenForCatalogChanges(conn *amqp.Connection, prefix string, onChange func(CatalogChange) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := DefineTopic(ch, prefix, CatalogChanged); err != nil {
		ch.Close()
		return err
	}
	return ListenToTopic(ch, prefix, CatalogChanged, func(d amqp.Delivery) error {
		change, err := DecodeCatalogChange(d.Body)
		if err != nil {
			return err
		}
		return onChange(change)
	})
}
