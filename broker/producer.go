package broker

import (
	"log"
	"time"

	"lumen-notes/lumen/config"

	"github.com/nats-io/nats.go"
)

// PublisherInterface is what event dispatch needs from the broker.
type PublisherInterface interface {
	Publish(subject string, data []byte) error
}

type Producer struct {
	conn *nats.Conn
}

func NewProducer(cfg config.Config) (*Producer, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("lumen-producer"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("NATS producer connected to %s", cfg.NatsURL)
	return &Producer{conn: conn}, nil
}

func (p *Producer) Publish(subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

func (p *Producer) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Printf("Failed to drain NATS producer connection: %v", err)
	}
}
