package notification

import (
	"context"
	"log/slog"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
)

// Notifier informs an account holder about a transfer that touched their
// account. Delivery is best-effort: the ledger never consults the outcome.
type Notifier interface {
	Notify(ctx context.Context, account domain.Account, message string)
}

// LogNotifier is the stand-in delivery channel: it writes the notification
// to the structured log. A real channel (email, push) would implement
// Notifier the same way.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, account domain.Account, message string) {
	n.logger.Info("account notification",
		"account_id", account.ID,
		"message", message,
	)
}
