// Package security appends audit events for authentication and other
// security-sensitive actions.
package security

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"estatehub/internal/model"
)

const defaultEventLimit = 50

type EventStore interface {
	Insert(ctx context.Context, e *model.SecurityEvent) error
	ListByUser(ctx context.Context, userID, limit int) ([]model.SecurityEvent, error)
}

// Service records security events fire-and-forget: audit logging must never
// break the user action that triggered it, so insert failures are logged and
// swallowed.
type Service struct {
	events EventStore
	logger *zap.Logger
}

func NewService(events EventStore, logger *zap.Logger) *Service {
	return &Service{events: events, logger: logger}
}

// LogEvent appends one audit row. Never returns an error.
func (s *Service) LogEvent(ctx context.Context, userID int, eventType, ipAddress, userAgent string, metadata map[string]any) {
	err := s.events.Insert(ctx, &model.SecurityEvent{
		UserID:    userID,
		EventType: eventType,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Metadata:  metadata,
	})
	if err != nil {
		s.logger.Error("Failed to record security event",
			zap.Int("user_id", userID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *Service) Log2FAEnabled(ctx context.Context, userID int, ip, ua string) {
	s.LogEvent(ctx, userID, model.SecEvent2FAEnabled, ip, ua, nil)
}

func (s *Service) Log2FADisabled(ctx context.Context, userID int, ip, ua string) {
	s.LogEvent(ctx, userID, model.SecEvent2FADisabled, ip, ua, nil)
}

func (s *Service) Log2FALoginFailure(ctx context.Context, userID int, ip, ua string, attempts int) {
	s.LogEvent(ctx, userID, model.SecEvent2FALoginFailure, ip, ua, map[string]any{
		"attempts": attempts,
	})
}

func (s *Service) LogLoginSuccess(ctx context.Context, userID int, ip, ua string) {
	s.LogEvent(ctx, userID, model.SecEventLoginSuccess, ip, ua, nil)
}

func (s *Service) LogLoginFailure(ctx context.Context, userID int, ip, ua, email string) {
	s.LogEvent(ctx, userID, model.SecEventLoginFailure, ip, ua, map[string]any{
		"email": email,
	})
}

func (s *Service) LogPasswordChanged(ctx context.Context, userID int, ip, ua string) {
	s.LogEvent(ctx, userID, model.SecEventPasswordChanged, ip, ua, nil)
}

func (s *Service) LogBackupDownloaded(ctx context.Context, userID int, ip, ua string, projectID int, projectName string) {
	s.LogEvent(ctx, userID, model.SecEventBackupDownload, ip, ua, map[string]any{
		"project_id":   projectID,
		"project_name": projectName,
	})
}

// UserEvents returns the user's events newest-first. A non-positive limit
// falls back to the default page size.
func (s *Service) UserEvents(ctx context.Context, userID, limit int) ([]model.SecurityEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	return s.events.ListByUser(ctx, userID, limit)
}

// RequestMetadata extracts the client IP and user agent from request
// headers. IP precedence: cf-connecting-ip, then the first x-forwarded-for
// hop, then x-real-ip, then "unknown".
func RequestMetadata(h http.Header) (string, string) {
	ip := "unknown"
	if v := h.Get("CF-Connecting-IP"); v != "" {
		ip = v
	} else if v := h.Get("X-Forwarded-For"); v != "" {
		ip = strings.TrimSpace(strings.Split(v, ",")[0])
	} else if v := h.Get("X-Real-IP"); v != "" {
		ip = v
	}

	ua := h.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	return ip, ua
}
