package model

import "time"

// Security event types.
const (
	SecEvent2FAEnabled      = "two_factor_enabled"
	SecEvent2FADisabled     = "two_factor_disabled"
	SecEvent2FALoginFailure = "two_factor_login_failure"
	SecEventLoginSuccess    = "login_success"
	SecEventLoginFailure    = "login_failure"
	SecEventPasswordChanged = "password_changed"
	SecEventBackupDownload  = "backup_downloaded"
)

// SecurityEvent is append-only; the service layer has no update or delete path.
type SecurityEvent struct {
	ID        int            `json:"id"`
	UserID    int            `json:"user_id"`
	EventType string         `json:"event_type"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
