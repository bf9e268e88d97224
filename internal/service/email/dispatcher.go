package email

import (
	"context"
	"time"

	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/mq"
	"estatehub/internal/ratelimit"
	"estatehub/internal/util"
	"estatehub/pkg/metrics"
)

type PreferenceStore interface {
	Find(ctx context.Context, userID int) (*model.NotificationPreference, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type DigestStore interface {
	Insert(ctx context.Context, e *model.DigestQueueEntry) error
}

type LogStore interface {
	Insert(ctx context.Context, l *model.EmailLog) error
}

// SlotScheduler computes the next digest delivery slot for a user's timezone.
type SlotScheduler interface {
	NextDigestTime(digestType, timezone string) time.Time
}

// Dispatcher decides, per created notification, whether to email the
// recipient now, queue a digest entry, or do nothing. All of its public
// methods are fire-and-forget: the triggering write has already happened and
// must never be failed by the email leg, so every error here is logged and
// swallowed.
type Dispatcher struct {
	prefs     PreferenceStore
	users     UserStore
	digests   DigestStore
	logs      LogStore
	limiter   ratelimit.Limiter
	scheduler SlotScheduler
	provider  Provider
	from      string
	jwtSecret string
	logger    *zap.Logger
}

func NewDispatcher(
	prefs PreferenceStore,
	users UserStore,
	digests DigestStore,
	logs LogStore,
	limiter ratelimit.Limiter,
	scheduler SlotScheduler,
	provider Provider,
	from string,
	jwtSecret string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		prefs:     prefs,
		users:     users,
		digests:   digests,
		logs:      logs,
		limiter:   limiter,
		scheduler: scheduler,
		provider:  provider,
		from:      from,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Dispatch routes one created notification to its per-type send path.
// Types without an email category (partner invitations, comments) stay
// in-app only.
func (d *Dispatcher) Dispatch(ctx context.Context, p mq.NotificationCreatedPayload) {
	switch p.Type {
	case model.NotifTypeCostAdded:
		d.SendCostAddedEmail(ctx, p)
	case model.NotifTypeLargeExpense:
		d.SendLargeExpenseEmail(ctx, p)
	case model.NotifTypeDocumentUploaded:
		d.SendDocumentUploadedEmail(ctx, p)
	case model.NotifTypeTimelineEvent:
		d.SendTimelineEventEmail(ctx, p)
	}
}

func (d *Dispatcher) SendCostAddedEmail(ctx context.Context, p mq.NotificationCreatedPayload) {
	d.send(ctx, p, sendOptions{
		categoryOn: func(pref *model.NotificationPreference) bool { return pref.EmailOnCost },
	})
}

// SendLargeExpenseEmail is the safety-alert path: it honors the user's
// EmailOnLargeExpense flag but skips both the digest deferral and the rate
// limiter, so a capped or digest-only user still hears about large spends
// immediately.
func (d *Dispatcher) SendLargeExpenseEmail(ctx context.Context, p mq.NotificationCreatedPayload) {
	d.send(ctx, p, sendOptions{
		categoryOn: func(pref *model.NotificationPreference) bool { return pref.EmailOnLargeExpense },
		bypass:     true,
	})
}

func (d *Dispatcher) SendDocumentUploadedEmail(ctx context.Context, p mq.NotificationCreatedPayload) {
	d.send(ctx, p, sendOptions{
		categoryOn: func(pref *model.NotificationPreference) bool { return pref.EmailOnDocument },
	})
}

func (d *Dispatcher) SendTimelineEventEmail(ctx context.Context, p mq.NotificationCreatedPayload) {
	d.send(ctx, p, sendOptions{
		categoryOn: func(pref *model.NotificationPreference) bool { return pref.EmailOnTimeline },
	})
}

type sendOptions struct {
	categoryOn func(*model.NotificationPreference) bool
	bypass     bool
}

func (d *Dispatcher) send(ctx context.Context, p mq.NotificationCreatedPayload, opt sendOptions) {
	pref, err := d.prefs.Find(ctx, p.UserID)
	if err != nil {
		d.logger.Error("Failed to load notification preference",
			zap.Int("user_id", p.UserID),
			zap.String("type", p.Type),
			zap.Error(err),
		)
		return
	}

	// Category opt-out is a hard suppression: no log row, nothing queued.
	if !opt.categoryOn(pref) {
		metrics.RecordEmailOutcome(p.Type, "suppressed")
		return
	}

	user, err := d.users.FindByID(ctx, p.UserID)
	if err != nil {
		// Should not happen under referential integrity.
		d.logger.Warn("Notification recipient has no user record",
			zap.Int("user_id", p.UserID),
			zap.String("type", p.Type),
			zap.Error(err),
		)
		return
	}

	if !opt.bypass {
		switch pref.EmailDigestFrequency {
		case model.DigestNever:
			metrics.RecordEmailOutcome(p.Type, "suppressed")
			return
		case model.DigestDaily, model.DigestWeekly:
			d.queueDigest(ctx, p, pref)
			return
		}

		if !d.limiter.Allow(ctx, p.UserID, false) {
			d.logger.Warn("Email rate limit reached, dropping send",
				zap.Int("user_id", p.UserID),
				zap.String("type", p.Type),
				zap.Int("notification_id", p.NotificationID),
			)
			metrics.RecordEmailOutcome(p.Type, "rate_limited")
			return
		}
	}

	token, err := util.GenerateUnsubscribeToken(p.UserID, d.jwtSecret)
	if err != nil {
		d.logger.Error("Failed to sign unsubscribe token",
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		return
	}

	subject, html := renderEmail(p, user, token)

	notifID := p.NotificationID
	entry := &model.EmailLog{
		UserID:         p.UserID,
		NotificationID: &notifID,
		EmailType:      p.Type,
		RecipientEmail: user.Email,
		Subject:        subject,
		Attempts:       1,
	}

	providerID, err := d.provider.Send(ctx, Message{
		To:      user.Email,
		From:    d.from,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		d.logger.Error("Email provider send failed",
			zap.Int("user_id", p.UserID),
			zap.String("type", p.Type),
			zap.Int("notification_id", p.NotificationID),
			zap.Error(err),
		)
		entry.Status = model.EmailStatusFailed
		entry.LastError = err.Error()
		if err := d.logs.Insert(ctx, entry); err != nil {
			d.logger.Error("Failed to record email log", zap.Error(err))
		}
		metrics.RecordEmailOutcome(p.Type, "failed")
		return
	}

	entry.Status = model.EmailStatusSent
	entry.ProviderID = providerID
	if err := d.logs.Insert(ctx, entry); err != nil {
		d.logger.Error("Failed to record email log", zap.Error(err))
	}
	metrics.RecordEmailOutcome(p.Type, "sent")
}

func (d *Dispatcher) queueDigest(ctx context.Context, p mq.NotificationCreatedPayload, pref *model.NotificationPreference) {
	entry := &model.DigestQueueEntry{
		UserID:         p.UserID,
		NotificationID: p.NotificationID,
		DigestType:     pref.EmailDigestFrequency,
		ScheduledFor:   d.scheduler.NextDigestTime(pref.EmailDigestFrequency, pref.Timezone),
	}
	if err := d.digests.Insert(ctx, entry); err != nil {
		d.logger.Error("Failed to queue digest entry",
			zap.Int("user_id", p.UserID),
			zap.Int("notification_id", p.NotificationID),
			zap.Error(err),
		)
		return
	}
	metrics.RecordEmailOutcome(p.Type, "deferred")
}
