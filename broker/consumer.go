package broker

import (
	"log"
	"time"

	"lumen-notes/lumen/config"

	"github.com/nats-io/nats.go"
)

type Consumer struct {
	conn     *nats.Conn
	subs     []*nats.Subscription
	messages chan *nats.Msg
}

// InitConsumer connects to NATS and queue-subscribes to the given subjects.
// Messages from all subscriptions are funneled into a single channel.
func InitConsumer(cfg config.Config, subjects []string, queueGroup string) (*Consumer, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("lumen-consumer-"+queueGroup),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	messages := make(chan *nats.Msg, 256)
	consumer := &Consumer{conn: conn, messages: messages}

	for _, subject := range subjects {
		sub, err := conn.ChanQueueSubscribe(subject, queueGroup, messages)
		if err != nil {
			consumer.Close()
			return nil, err
		}
		consumer.subs = append(consumer.subs, sub)
	}

	log.Printf("NATS consumer subscribed to %v (group %s)", subjects, queueGroup)
	return consumer, nil
}

func (c *Consumer) GetMessageChannel() chan *nats.Msg {
	return c.messages
}

func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe: %v", err)
		}
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
