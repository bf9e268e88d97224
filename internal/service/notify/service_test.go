package notify

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
)

type fakeProjectStore struct {
	project *model.Project
	members []int
	findErr error
}

func (f *fakeProjectStore) FindByID(_ context.Context, _ int) (*model.Project, error) {
	return f.project, f.findErr
}

func (f *fakeProjectStore) AcceptedMemberIDs(_ context.Context, _ int) ([]int, error) {
	return f.members, nil
}

type fakeNotificationStore struct {
	inserted []*model.Notification
	err      error
	nextID   int
}

func (f *fakeNotificationStore) BulkInsert(_ context.Context, notifs []*model.Notification) error {
	if f.err != nil {
		return f.err
	}
	for _, n := range notifs {
		f.nextID++
		n.ID = f.nextID
		n.CreatedAt = time.Now()
	}
	f.inserted = append(f.inserted, notifs...)
	return nil
}

type fakeCommentStore struct {
	commenters []int
	creator    int
	creatorErr error
}

func (f *fakeCommentStore) DistinctCommenterIDs(_ context.Context, _ string, _ int) ([]int, error) {
	return f.commenters, nil
}

func (f *fakeCommentStore) EntityCreatorID(_ context.Context, _ string, _ int) (int, error) {
	return f.creator, f.creatorErr
}

type fakeUserStore struct {
	byName map[string]model.User
}

func (f *fakeUserStore) FindByDisplayNames(_ context.Context, names []string) ([]model.User, error) {
	var users []model.User
	for _, name := range names {
		if u, ok := f.byName[name]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

type captureDispatcher struct {
	payloads []mq.NotificationCreatedPayload
}

func (c *captureDispatcher) DispatchAsync(p mq.NotificationCreatedPayload) {
	c.payloads = append(c.payloads, p)
}

func newTestService(projects *fakeProjectStore, notifs *fakeNotificationStore, comments *fakeCommentStore, users *fakeUserStore) (*Service, *captureDispatcher) {
	if users == nil {
		users = &fakeUserStore{}
	}
	if comments == nil {
		comments = &fakeCommentStore{}
	}
	d := &captureDispatcher{}
	return NewService(projects, notifs, comments, users, d, zap.NewNop()), d
}

func recipientIDs(notifs []*model.Notification) []int {
	ids := make([]int, len(notifs))
	for i, n := range notifs {
		ids[i] = n.UserID
	}
	return ids
}

func TestNotifyProjectMembersExcludesActorAndDedupes(t *testing.T) {
	projects := &fakeProjectStore{
		project: &model.Project{ID: 7, OwnerID: 1, Name: "Lakehouse", Currency: "USD"},
		// Owner also appears in the member list; must only get one row.
		members: []int{1, 2, 3},
	}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(projects, notifs, nil, nil)

	svc.NotifyProjectMembers(context.Background(), 7,
		model.NotifTypeCostAdded, "cost", 99,
		MessageData{ActorName: "Jane", EntityTitle: "Roofing", Amount: 100},
		3,
	)

	assert.ElementsMatch(t, []int{1, 2}, recipientIDs(notifs.inserted))
	assert.Len(t, dispatcher.payloads, 2)

	for _, n := range notifs.inserted {
		assert.Equal(t, model.NotifTypeCostAdded, n.Type)
		assert.Contains(t, n.Message, "Lakehouse", "project name comes from the project row")
		require.NotNil(t, n.ProjectID)
		assert.Equal(t, 7, *n.ProjectID)
	}
}

func TestNotifyProjectMembersDeletedProjectIsNoop(t *testing.T) {
	deletedAt := time.Now()
	projects := &fakeProjectStore{
		project: &model.Project{ID: 7, OwnerID: 1, DeletedAt: &deletedAt},
		members: []int{2},
	}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(projects, notifs, nil, nil)

	svc.NotifyProjectMembers(context.Background(), 7,
		model.NotifTypeCostAdded, "cost", 99, MessageData{}, 1)

	assert.Empty(t, notifs.inserted)
	assert.Empty(t, dispatcher.payloads)
}

func TestNotifyProjectMembersMissingProjectIsNoop(t *testing.T) {
	projects := &fakeProjectStore{findErr: errors.New("no rows")}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(projects, notifs, nil, nil)

	svc.NotifyProjectMembers(context.Background(), 7,
		model.NotifTypeCostAdded, "cost", 99, MessageData{}, 1)

	assert.Empty(t, notifs.inserted)
	assert.Empty(t, dispatcher.payloads)
}

func TestNotifyProjectMembersActorOnlyMemberIsNoop(t *testing.T) {
	projects := &fakeProjectStore{
		project: &model.Project{ID: 7, OwnerID: 1, Name: "Solo"},
	}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(projects, notifs, nil, nil)

	svc.NotifyProjectMembers(context.Background(), 7,
		model.NotifTypeCostAdded, "cost", 99, MessageData{}, 1)

	assert.Empty(t, notifs.inserted)
	assert.Empty(t, dispatcher.payloads)
}

func TestNotifyProjectMembersInsertFailureDispatchesNothing(t *testing.T) {
	projects := &fakeProjectStore{
		project: &model.Project{ID: 7, OwnerID: 1, Name: "Lakehouse"},
		members: []int{2},
	}
	notifs := &fakeNotificationStore{err: errors.New("db down")}
	svc, dispatcher := newTestService(projects, notifs, nil, nil)

	svc.NotifyProjectMembers(context.Background(), 7,
		model.NotifTypeCostAdded, "cost", 99, MessageData{}, 1)

	assert.Empty(t, dispatcher.payloads)
}

func TestNotifyCommentAddedRecipientSet(t *testing.T) {
	comments := &fakeCommentStore{
		commenters: []int{2, 3, 5}, // 5 is the author
		creator:    4,
	}
	users := &fakeUserStore{byName: map[string]model.User{
		"jane doe": {ID: 9, DisplayName: "Jane Doe"},
	}}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(&fakeProjectStore{}, notifs, comments, users)

	comment := &model.Comment{
		ProjectID:  7,
		EntityType: "cost",
		EntityID:   99,
		AuthorID:   5,
		Body:       "looks high, @jane_doe can you check?",
	}
	svc.NotifyCommentAdded(context.Background(), comment, MessageData{ActorName: "Bob", EntityTitle: "Roofing"})

	assert.ElementsMatch(t, []int{2, 3, 4, 9}, recipientIDs(notifs.inserted))
	assert.Len(t, dispatcher.payloads, 4)
}

func TestNotifyCommentAddedAuthorAloneIsNoop(t *testing.T) {
	comments := &fakeCommentStore{
		commenters: []int{5},
		creator:    5,
	}
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(&fakeProjectStore{}, notifs, comments, nil)

	comment := &model.Comment{EntityType: "cost", EntityID: 99, AuthorID: 5, Body: "first note"}
	svc.NotifyCommentAdded(context.Background(), comment, MessageData{})

	assert.Empty(t, notifs.inserted)
	assert.Empty(t, dispatcher.payloads)
}

func TestNotifyCommentAddedCreatorLookupFailureStillNotifiesOthers(t *testing.T) {
	comments := &fakeCommentStore{
		commenters: []int{2},
		creatorErr: errors.New("unknown entity"),
	}
	notifs := &fakeNotificationStore{}
	svc, _ := newTestService(&fakeProjectStore{}, notifs, comments, nil)

	comment := &model.Comment{EntityType: "cost", EntityID: 99, AuthorID: 5, Body: "note"}
	svc.NotifyCommentAdded(context.Background(), comment, MessageData{})

	assert.ElementsMatch(t, []int{2}, recipientIDs(notifs.inserted))
}

func TestNotifyUserSingleRecipient(t *testing.T) {
	notifs := &fakeNotificationStore{}
	svc, dispatcher := newTestService(&fakeProjectStore{}, notifs, nil, nil)

	projectID := 7
	svc.NotifyUser(context.Background(), 2,
		model.NotifTypePartnerInvited, "project", 7, &projectID,
		MessageData{ActorName: "Jane", ProjectName: "Lakehouse"})

	require.Len(t, notifs.inserted, 1)
	assert.Equal(t, 2, notifs.inserted[0].UserID)
	assert.Equal(t, "Jane invited you to partner on Lakehouse", notifs.inserted[0].Message)
	require.Len(t, dispatcher.payloads, 1)
	assert.Equal(t, notifs.inserted[0].ID, dispatcher.payloads[0].NotificationID)
	assert.Equal(t, "Lakehouse", dispatcher.payloads[0].Data["project_name"])
}
