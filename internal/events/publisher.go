// Package events fans workspace frames and notifications out to NATS so
// other services can follow activity without holding a WebSocket.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher delivers a JSON-encoded event to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// WorkspaceSubject is the subject for a frame broadcast into a request workspace
func WorkspaceSubject(requestID int64, frameType string) string {
	return "workspace." + strconv.FormatInt(requestID, 10) + "." + frameType
}

// NotificationSubject is the subject for notifications addressed to a user
func NotificationSubject(userID int64) string {
	return "notifications." + strconv.FormatInt(userID, 10)
}

// NATSPublisher publishes core NATS messages
type NATSPublisher struct {
	conn *nats.Conn
}

// Connect dials NATS. An empty URL yields a no-op publisher.
func Connect(cfg config.NATSConfig) (Publisher, error) {
	if cfg.URL == "" {
		return NoopPublisher{}, nil
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// Publish encodes event as JSON and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NoopPublisher discards every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, event any) error { return nil }
func (NoopPublisher) Close()                                                       {}
