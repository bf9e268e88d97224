package notify

import (
	"context"

	"go.uber.org/zap"

	"estatehub/internal/mq"
	"estatehub/internal/service/email"
)

// AsyncDispatcher hands a created notification to the email pipeline without
// blocking the caller. Implementations own their error handling; nothing
// surfaces to the fan-out.
type AsyncDispatcher interface {
	DispatchAsync(p mq.NotificationCreatedPayload)
}

// MQDispatcher publishes notification.created events for the worker to
// consume. A failed publish only drops the email leg; the notification row
// has already been written.
type MQDispatcher struct {
	pub    *mq.Publisher
	logger *zap.Logger
}

func NewMQDispatcher(pub *mq.Publisher, logger *zap.Logger) *MQDispatcher {
	return &MQDispatcher{pub: pub, logger: logger}
}

func (d *MQDispatcher) DispatchAsync(p mq.NotificationCreatedPayload) {
	if err := d.pub.Publish(mq.KeyNotificationCreated, p); err != nil {
		d.logger.Error("Failed to publish notification.created",
			zap.Int("notification_id", p.NotificationID),
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
	}
}

// LocalDispatcher runs the email dispatcher on a detached goroutine for
// single-process deployments without a broker. The send may complete after
// the triggering HTTP response; a shutdown mid-flight drops it, which is
// acceptable for advisory email.
type LocalDispatcher struct {
	dispatcher *email.Dispatcher
	logger     *zap.Logger
}

func NewLocalDispatcher(dispatcher *email.Dispatcher, logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{dispatcher: dispatcher, logger: logger}
}

func (d *LocalDispatcher) DispatchAsync(p mq.NotificationCreatedPayload) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Email dispatch panic recovered",
					zap.Int("notification_id", p.NotificationID),
					zap.Any("panic", r),
				)
			}
		}()
		d.dispatcher.Dispatch(context.Background(), p)
	}()
}
