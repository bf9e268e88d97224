package digest

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/service/email"
	"estatehub/internal/util"
	"estatehub/pkg/metrics"
)

const (
	sweepBatchSize = 500
	dedupScope     = "digest_entry"
)

type QueueStore interface {
	DueEntries(ctx context.Context, now time.Time, limit int) ([]model.DigestQueueEntry, error)
	MarkProcessed(ctx context.Context, ids []int) error
}

type NotificationStore interface {
	FindByID(ctx context.Context, id int) (*model.Notification, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type LogStore interface {
	Insert(ctx context.Context, l *model.EmailLog) error
}

// OnceGuard keeps one send per queue entry across worker instances.
type OnceGuard interface {
	AcquireOnce(ctx context.Context, scope string, id int) bool
}

// Sender delivers due digest queue entries: one email per user per digest
// type per sweep. Entries are consumed at most once; a failed provider call
// still consumes its entries rather than retrying.
type Sender struct {
	queue     QueueStore
	notifs    NotificationStore
	users     UserStore
	logs      LogStore
	guard     OnceGuard
	provider  email.Provider
	from      string
	jwtSecret string
	now       func() time.Time
	signToken func(userID int, secret string) (string, error)
	logger    *zap.Logger
}

func NewSender(
	queue QueueStore,
	notifs NotificationStore,
	users UserStore,
	logs LogStore,
	guard OnceGuard,
	provider email.Provider,
	from string,
	jwtSecret string,
	logger *zap.Logger,
) *Sender {
	return &Sender{
		queue:     queue,
		notifs:    notifs,
		users:     users,
		logs:      logs,
		guard:     guard,
		provider:  provider,
		from:      from,
		jwtSecret: jwtSecret,
		now:       time.Now,
		signToken: util.GenerateUnsubscribeToken,
		logger:    logger,
	}
}

// Start runs sweeps on the given interval until the context is canceled.
// Blocks; call in a goroutine.
func (s *Sender) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Digest sender started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Digest sender stopped")
			return
		case <-ticker.C:
			if err := s.RunSweep(ctx); err != nil {
				s.logger.Error("Digest sweep failed", zap.Error(err))
			}
		}
	}
}

type digestGroup struct {
	userID     int
	digestType string
	entryIDs   []int
	messages   []string
}

// RunSweep claims due entries, groups them per user and digest type, and
// sends one batched email per group.
func (s *Sender) RunSweep(ctx context.Context) error {
	entries, err := s.queue.DueEntries(ctx, s.now(), sweepBatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	s.logger.Info("Digest sweep claimed entries", zap.Int("count", len(entries)))

	type groupKey struct {
		userID     int
		digestType string
	}
	groups := make(map[groupKey]*digestGroup)
	for _, e := range entries {
		// Another worker instance may have claimed the same entry.
		if !s.guard.AcquireOnce(ctx, dedupScope, e.ID) {
			continue
		}

		n, err := s.notifs.FindByID(ctx, e.NotificationID)
		if err != nil {
			s.logger.Warn("Digest entry references missing notification",
				zap.Int("entry_id", e.ID),
				zap.Int("notification_id", e.NotificationID),
				zap.Error(err),
			)
			// Consume the entry anyway; it can never become sendable.
			if err := s.queue.MarkProcessed(ctx, []int{e.ID}); err != nil {
				s.logger.Error("Failed to mark orphaned digest entry", zap.Error(err))
			}
			continue
		}

		k := groupKey{userID: e.UserID, digestType: e.DigestType}
		g, ok := groups[k]
		if !ok {
			g = &digestGroup{userID: e.UserID, digestType: e.DigestType}
			groups[k] = g
		}
		g.entryIDs = append(g.entryIDs, e.ID)
		g.messages = append(g.messages, n.Message)
	}

	ordered := make([]*digestGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].userID < ordered[j].userID })

	for _, g := range ordered {
		s.deliver(ctx, g)
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, g *digestGroup) {
	user, err := s.users.FindByID(ctx, g.userID)
	if err != nil {
		s.logger.Warn("Digest recipient has no user record",
			zap.Int("user_id", g.userID),
			zap.Error(err),
		)
		s.consume(ctx, g)
		return
	}

	token, err := s.signToken(g.userID, s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign unsubscribe token", zap.Int("user_id", g.userID), zap.Error(err))
		// The guard already claimed these entries; leaving them unprocessed
		// would only re-fetch and skip them every sweep until the TTL lapses.
		s.consume(ctx, g)
		return
	}

	subject, html := email.RenderDigest(user, g.digestType, g.messages, token)

	entry := &model.EmailLog{
		UserID:         g.userID,
		EmailType:      "digest_" + g.digestType,
		RecipientEmail: user.Email,
		Subject:        subject,
		Attempts:       1,
	}

	providerID, err := s.provider.Send(ctx, email.Message{
		To:      user.Email,
		From:    s.from,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		s.logger.Error("Digest email send failed",
			zap.Int("user_id", g.userID),
			zap.String("digest_type", g.digestType),
			zap.Error(err),
		)
		entry.Status = model.EmailStatusFailed
		entry.LastError = err.Error()
		if err := s.logs.Insert(ctx, entry); err != nil {
			s.logger.Error("Failed to record email log", zap.Error(err))
		}
		metrics.RecordDigestDelivery(g.digestType, "failed")
		s.consume(ctx, g)
		return
	}

	entry.Status = model.EmailStatusSent
	entry.ProviderID = providerID
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Error("Failed to record email log", zap.Error(err))
	}
	metrics.RecordDigestDelivery(g.digestType, "sent")

	s.logger.Info("Digest delivered",
		zap.Int("user_id", g.userID),
		zap.String("digest_type", g.digestType),
		zap.Int("item_count", len(g.messages)),
	)
	s.consume(ctx, g)
}

func (s *Sender) consume(ctx context.Context, g *digestGroup) {
	if err := s.queue.MarkProcessed(ctx, g.entryIDs); err != nil {
		s.logger.Error("Failed to mark digest entries processed",
			zap.Int("user_id", g.userID),
			zap.Error(err),
		)
	}
}
