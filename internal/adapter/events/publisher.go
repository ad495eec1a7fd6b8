// internal/adapter/events/publisher.go

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"shortsradar/internal/config"
	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
)

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes ranking events to NATS
type NATSPublisher struct {
	conn  Conn
	topic string
}

// NewNATSPublisher creates a publisher writing to "<topic>.ranked"
func NewNATSPublisher(conn Conn, topic string) *NATSPublisher {
	return &NATSPublisher{
		conn:  conn,
		topic: topic,
	}
}

// Subject returns the subject ranking events are published on
func (p *NATSPublisher) Subject() string {
	return fmt.Sprintf("%s.ranked", p.topic)
}

// PublishRanked publishes a ranking completed event
func (p *NATSPublisher) PublishRanked(ctx context.Context, event trend.RankedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling ranked event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(), data); err != nil {
		return fmt.Errorf("error publishing ranked event: %w", err)
	}
	return nil
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

// PublishRanked does nothing
func (NopPublisher) PublishRanked(context.Context, trend.RankedEvent) error {
	return nil
}

// Connect opens a NATS connection with reconnect handling that logs through log
func Connect(cfg config.NATSConfig, log logger.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("shortsradar"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
