package security

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estatehub/internal/model"
)

type fakeEventStore struct {
	events    []*model.SecurityEvent
	insertErr error
}

func (f *fakeEventStore) Insert(_ context.Context, e *model.SecurityEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventStore) ListByUser(_ context.Context, userID, limit int) ([]model.SecurityEvent, error) {
	var out []model.SecurityEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].UserID == userID {
			out = append(out, *f.events[i])
		}
	}
	return out, nil
}

func TestLogEventRecordsMetadata(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, zap.NewNop())

	svc.LogBackupDownloaded(context.Background(), 42, "1.2.3.4", "curl/8.0", 7, "Lakehouse")

	require.Len(t, store.events, 1)
	e := store.events[0]
	assert.Equal(t, model.SecEventBackupDownload, e.EventType)
	assert.Equal(t, "1.2.3.4", e.IPAddress)
	assert.Equal(t, "Lakehouse", e.Metadata["project_name"])
}

func TestLogEventInsertFailureIsSwallowed(t *testing.T) {
	store := &fakeEventStore{insertErr: errors.New("db down")}
	svc := NewService(store, zap.NewNop())

	assert.NotPanics(t, func() {
		svc.LogLoginSuccess(context.Background(), 42, "1.2.3.4", "curl/8.0")
	})
}

func TestLogLoginFailureCarriesEmail(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, zap.NewNop())

	svc.LogLoginFailure(context.Background(), 42, "1.2.3.4", "curl/8.0", "jane@example.com")

	require.Len(t, store.events, 1)
	assert.Equal(t, "jane@example.com", store.events[0].Metadata["email"])
}

func TestLog2FALoginFailureCarriesAttempts(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, zap.NewNop())

	svc.Log2FALoginFailure(context.Background(), 42, "1.2.3.4", "curl/8.0", 3)

	require.Len(t, store.events, 1)
	assert.Equal(t, model.SecEvent2FALoginFailure, store.events[0].EventType)
	assert.Equal(t, 3, store.events[0].Metadata["attempts"])
}

func TestUserEventsNewestFirstWithDefaultLimit(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, zap.NewNop())

	svc.LogLoginSuccess(context.Background(), 42, "1.1.1.1", "ua")
	svc.LogPasswordChanged(context.Background(), 42, "1.1.1.1", "ua")
	svc.LogLoginSuccess(context.Background(), 7, "2.2.2.2", "ua")

	events, err := svc.UserEvents(context.Background(), 42, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.SecEventPasswordChanged, events[0].EventType, "newest first")
	assert.Equal(t, model.SecEventLoginSuccess, events[1].EventType)
}

func TestRequestMetadataPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		wantIP  string
	}{
		{
			name: "cloudflare header wins",
			headers: map[string]string{
				"CF-Connecting-IP": "9.9.9.9",
				"X-Forwarded-For":  "1.1.1.1, 2.2.2.2",
				"X-Real-IP":        "3.3.3.3",
			},
			wantIP: "9.9.9.9",
		},
		{
			name: "first forwarded hop",
			headers: map[string]string{
				"X-Forwarded-For": "1.1.1.1, 2.2.2.2",
				"X-Real-IP":       "3.3.3.3",
			},
			wantIP: "1.1.1.1",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-IP": "3.3.3.3"},
			wantIP:  "3.3.3.3",
		},
		{
			name:    "nothing known",
			headers: map[string]string{},
			wantIP:  "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			ip, _ := RequestMetadata(h)
			assert.Equal(t, tt.wantIP, ip)
		})
	}
}

func TestRequestMetadataUserAgent(t *testing.T) {
	h := http.Header{}
	h.Set("User-Agent", "curl/8.0")
	_, ua := RequestMetadata(h)
	assert.Equal(t, "curl/8.0", ua)

	_, ua = RequestMetadata(http.Header{})
	assert.Equal(t, "unknown", ua)
}
