package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/mq"
	"estatehub/internal/ratelimit"
)

type fakePrefStore struct {
	pref *model.NotificationPreference
	err  error
}

func (f *fakePrefStore) Find(_ context.Context, userID int) (*model.NotificationPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pref == nil {
		return model.DefaultPreference(userID), nil
	}
	return f.pref, nil
}

type fakeUserStore struct {
	user *model.User
	err  error
}

func (f *fakeUserStore) FindByID(_ context.Context, _ int) (*model.User, error) {
	return f.user, f.err
}

type fakeDigestStore struct {
	entries []*model.DigestQueueEntry
}

func (f *fakeDigestStore) Insert(_ context.Context, e *model.DigestQueueEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeLogStore struct {
	logs []*model.EmailLog
}

func (f *fakeLogStore) Insert(_ context.Context, l *model.EmailLog) error {
	f.logs = append(f.logs, l)
	return nil
}

type fakeScheduler struct {
	slot time.Time
}

func (f *fakeScheduler) NextDigestTime(_, _ string) time.Time {
	return f.slot
}

type fakeProvider struct {
	id   string
	err  error
	sent []Message
}

func (f *fakeProvider) Send(_ context.Context, msg Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return f.id, nil
}

type dispatcherFixture struct {
	prefs    *fakePrefStore
	users    *fakeUserStore
	digests  *fakeDigestStore
	logs     *fakeLogStore
	limiter  ratelimit.Limiter
	provider *fakeProvider
	d        *Dispatcher
}

func newFixture(pref *model.NotificationPreference, limiter ratelimit.Limiter) *dispatcherFixture {
	f := &dispatcherFixture{
		prefs:    &fakePrefStore{pref: pref},
		users:    &fakeUserStore{user: &model.User{ID: 42, Email: "jane@example.com", DisplayName: "Jane"}},
		digests:  &fakeDigestStore{},
		logs:     &fakeLogStore{},
		limiter:  limiter,
		provider: &fakeProvider{id: "prov-1"},
	}
	if f.limiter == nil {
		f.limiter = ratelimit.NewMemoryLimiter(time.Hour, 10)
	}
	f.d = NewDispatcher(
		f.prefs, f.users, f.digests, f.logs,
		f.limiter, &fakeScheduler{slot: time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC)},
		f.provider, "EstateHub <no-reply@estatehub.io>", "secret", zap.NewNop(),
	)
	return f
}

func costPayload() mq.NotificationCreatedPayload {
	return mq.NotificationCreatedPayload{
		NotificationID: 101,
		UserID:         42,
		Type:           model.NotifTypeCostAdded,
		EntityType:     "cost",
		EntityID:       99,
		Message:        "Jane added a cost to Lakehouse: Roofing ($1,500.00)",
		Data:           map[string]string{"project_name": "Lakehouse"},
	}
}

func TestDispatchDefaultPreferenceSendsImmediately(t *testing.T) {
	// No preference row means everything on, immediate delivery.
	f := newFixture(nil, nil)

	f.d.Dispatch(context.Background(), costPayload())

	require.Len(t, f.provider.sent, 1)
	assert.Equal(t, "jane@example.com", f.provider.sent[0].To)
	assert.Contains(t, f.provider.sent[0].Subject, "Lakehouse")
	assert.Contains(t, f.provider.sent[0].HTML, "unsubscribe?token=")

	require.Len(t, f.logs.logs, 1)
	entry := f.logs.logs[0]
	assert.Equal(t, model.EmailStatusSent, entry.Status)
	assert.Equal(t, "prov-1", entry.ProviderID)
	require.NotNil(t, entry.NotificationID)
	assert.Equal(t, 101, *entry.NotificationID)
	assert.Empty(t, f.digests.entries)
}

func TestDispatchCategoryOffIsHardSuppression(t *testing.T) {
	pref := model.DefaultPreference(42)
	pref.EmailOnCost = false
	f := newFixture(pref, nil)

	f.d.Dispatch(context.Background(), costPayload())

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs, "suppression leaves no log row")
	assert.Empty(t, f.digests.entries, "suppression queues nothing")
}

func TestDispatchNeverFrequencySendsNothing(t *testing.T) {
	pref := model.DefaultPreference(42)
	pref.EmailDigestFrequency = model.DigestNever
	f := newFixture(pref, nil)

	f.d.Dispatch(context.Background(), costPayload())

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
	assert.Empty(t, f.digests.entries)
}

func TestDispatchDailyFrequencyQueuesDigest(t *testing.T) {
	pref := model.DefaultPreference(42)
	pref.EmailDigestFrequency = model.DigestDaily
	pref.Timezone = "Europe/Helsinki"
	f := newFixture(pref, nil)

	f.d.Dispatch(context.Background(), costPayload())

	assert.Empty(t, f.provider.sent)
	require.Len(t, f.digests.entries, 1)
	e := f.digests.entries[0]
	assert.Equal(t, 42, e.UserID)
	assert.Equal(t, 101, e.NotificationID)
	assert.Equal(t, model.DigestDaily, e.DigestType)
	assert.Equal(t, time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC), e.ScheduledFor)
}

func TestDispatchRateLimitDropsSilently(t *testing.T) {
	f := newFixture(nil, ratelimit.NewMemoryLimiter(time.Hour, 1))

	f.d.Dispatch(context.Background(), costPayload())
	f.d.Dispatch(context.Background(), costPayload())

	assert.Len(t, f.provider.sent, 1, "second send is over the cap")
	assert.Len(t, f.logs.logs, 1, "a rate-limited drop leaves no log row")
	assert.Empty(t, f.digests.entries, "rate-limited sends are not deferred to a digest")
}

func TestDispatchLargeExpenseBypassesDigestAndLimiter(t *testing.T) {
	pref := model.DefaultPreference(42)
	pref.EmailDigestFrequency = model.DigestDaily
	limiter := ratelimit.NewMemoryLimiter(time.Hour, 1)
	require.True(t, limiter.Allow(context.Background(), 42, false))
	require.False(t, limiter.Allow(context.Background(), 42, false))

	f := newFixture(pref, limiter)

	p := costPayload()
	p.Type = model.NotifTypeLargeExpense
	f.d.Dispatch(context.Background(), p)

	require.Len(t, f.provider.sent, 1, "digest-only and capped user still gets the alert")
	assert.Empty(t, f.digests.entries)
}

func TestDispatchLargeExpenseStillHonorsItsOwnFlag(t *testing.T) {
	pref := model.DefaultPreference(42)
	pref.EmailOnLargeExpense = false
	f := newFixture(pref, nil)

	p := costPayload()
	p.Type = model.NotifTypeLargeExpense
	f.d.Dispatch(context.Background(), p)

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
}

func TestDispatchAfterUnsubscribeSendsNothingAtAll(t *testing.T) {
	// The unsubscribe endpoint writes exactly this preference state. Even the
	// bypassing large-expense alert must stay silent.
	pref := model.DefaultPreference(42)
	pref.DisableAllEmail()
	f := newFixture(pref, nil)

	for _, typ := range []string{
		model.NotifTypeCostAdded,
		model.NotifTypeLargeExpense,
		model.NotifTypeDocumentUploaded,
		model.NotifTypeTimelineEvent,
	} {
		p := costPayload()
		p.Type = typ
		f.d.Dispatch(context.Background(), p)
	}

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
	assert.Empty(t, f.digests.entries)
}

func TestDispatchMissingUserSendsNothing(t *testing.T) {
	f := newFixture(nil, nil)
	f.users.err = errors.New("no rows")

	f.d.Dispatch(context.Background(), costPayload())

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
}

func TestDispatchProviderFailureRecordsFailedLog(t *testing.T) {
	f := newFixture(nil, nil)
	f.provider.err = errors.New("provider 503")

	f.d.Dispatch(context.Background(), costPayload())

	require.Len(t, f.logs.logs, 1)
	entry := f.logs.logs[0]
	assert.Equal(t, model.EmailStatusFailed, entry.Status)
	assert.Equal(t, "provider 503", entry.LastError)
	assert.Equal(t, 1, entry.Attempts)
}

func TestDispatchIgnoresNonEmailTypes(t *testing.T) {
	f := newFixture(nil, nil)

	p := costPayload()
	p.Type = model.NotifTypeCommentAdded
	f.d.Dispatch(context.Background(), p)
	p.Type = model.NotifTypePartnerInvited
	f.d.Dispatch(context.Background(), p)

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
	assert.Empty(t, f.digests.entries)
}

func TestDispatchPreferenceLoadFailureSendsNothing(t *testing.T) {
	f := newFixture(nil, nil)
	f.prefs.err = errors.New("db down")

	f.d.Dispatch(context.Background(), costPayload())

	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.logs)
}
