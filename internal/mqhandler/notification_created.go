// Package mqhandler binds queue messages to their worker-side services.
package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"estatehub/internal/mq"
	"estatehub/internal/service/email"
)

// NotificationCreated returns the handler for notification.created messages.
// Email delivery gets exactly one attempt per message: the dispatcher logs
// its own failures and the handler always acks, so a broken send never
// requeues into a retry storm.
func NotificationCreated(dispatcher *email.Dispatcher, logger *zap.Logger) mq.MessageHandler {
	return func(ctx context.Context, data json.RawMessage) error {
		var p mq.NotificationCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			logger.Error("Malformed notification payload, dropping", zap.Error(err))
			return nil
		}

		dispatcher.Dispatch(ctx, p)
		return nil
	}
}
