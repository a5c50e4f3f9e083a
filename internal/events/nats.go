package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events over core NATS.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server. prefix namespaces every
// published subject, e.g. "njord" yields "njord.order.created".
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("njord-storefront"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	full := subject
	if p.prefix != "" {
		full = p.prefix + "." + subject
	}

	if err := p.conn.Publish(full, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", full, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Drain()
}

// NoopPublisher discards events. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, event any) error { return nil }
func (NoopPublisher) Close()                                                       {}
