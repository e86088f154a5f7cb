// Package events carries wallet mutations over NATS to interested consumers.
// The publisher is fire-and-forget: the ledger write has already committed,
// so a lost event never blocks or reverses a balance change.
package events

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Publisher emits JSON events on NATS subjects. A nil Publisher or one built
// without a connection is a no-op, so environments without NATS run fine.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(conn *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

func (p *Publisher) Publish(subject string, v any) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("event marshal failed", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Error("event publish failed", "subject", subject, "error", err)
	}
}
