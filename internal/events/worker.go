package events

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/Durgesh2022/yoga-app/pkg/audit"
)

// AuditWorker consumes wallet events and appends them to the tamper-evident
// audit chain. Queue-subscribed so multiple instances share the stream.
type AuditWorker struct {
	conn   *nats.Conn
	chain  *audit.ChainLog
	logger *slog.Logger
	sub    *nats.Subscription
}

func NewAuditWorker(conn *nats.Conn, chain *audit.ChainLog, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{conn: conn, chain: chain, logger: logger}
}

// Start subscribes to every wallet subject. Returns immediately; messages are
// handled on the NATS delivery goroutine.
func (w *AuditWorker) Start(ctx context.Context) error {
	sub, err := w.conn.QueueSubscribe("wallet.>", "wallet-audit", func(msg *nats.Msg) {
		entry, err := w.chain.Append(ctx, string(msg.Data))
		if err != nil {
			w.logger.Error("audit append failed", "subject", msg.Subject, "error", err)
			return
		}
		w.logger.Debug("audit entry recorded", "subject", msg.Subject, "entry_id", entry.ID)
	})
	if err != nil {
		return err
	}
	w.sub = sub
	w.logger.Info("audit worker subscribed", "subject", "wallet.>", "queue", "wallet-audit")
	return nil
}

// Stop drains the subscription so in-flight messages finish.
func (w *AuditWorker) Stop() error {
	if w.sub == nil {
		return nil
	}
	return w.sub.Drain()
}
