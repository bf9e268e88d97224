// Package notify fans one project event out into per-recipient notification
// rows and hands each row to the email pipeline.
package notify

import (
	"context"

	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/mq"
	"estatehub/pkg/metrics"
)

type ProjectStore interface {
	FindByID(ctx context.Context, id int) (*model.Project, error)
	AcceptedMemberIDs(ctx context.Context, projectID int) ([]int, error)
}

type NotificationStore interface {
	BulkInsert(ctx context.Context, notifs []*model.Notification) error
}

type CommentStore interface {
	DistinctCommenterIDs(ctx context.Context, entityType string, entityID int) ([]int, error)
	EntityCreatorID(ctx context.Context, entityType string, entityID int) (int, error)
}

type UserStore interface {
	FindByDisplayNames(ctx context.Context, names []string) ([]model.User, error)
}

// Service is the notification fan-out. Its entry points never return an
// error: the triggering write has already succeeded, and notification
// delivery is advisory with respect to it. Failures are logged and the
// remaining recipients proceed.
type Service struct {
	projects   ProjectStore
	notifs     NotificationStore
	comments   CommentStore
	users      UserStore
	dispatcher AsyncDispatcher
	logger     *zap.Logger
}

func NewService(
	projects ProjectStore,
	notifs NotificationStore,
	comments CommentStore,
	users UserStore,
	dispatcher AsyncDispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:   projects,
		notifs:     notifs,
		comments:   comments,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// NotifyProjectMembers writes one notification row for every member of the
// project (owner plus accepted partners, minus the acting user) in a single
// batch, then dispatches the email leg per row without awaiting it.
func (s *Service) NotifyProjectMembers(
	ctx context.Context,
	projectID int,
	notifType, entityType string,
	entityID int,
	data MessageData,
	excludeUserID int,
) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		s.logger.Warn("Fan-out target project not found",
			zap.Int("project_id", projectID),
			zap.String("type", notifType),
			zap.Error(err),
		)
		return
	}
	if project.DeletedAt != nil {
		s.logger.Warn("Fan-out target project is deleted",
			zap.Int("project_id", projectID),
			zap.String("type", notifType),
		)
		return
	}

	memberIDs, err := s.projects.AcceptedMemberIDs(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to resolve project members",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return
	}

	recipients := dedupe(append([]int{project.OwnerID}, memberIDs...), excludeUserID)
	if len(recipients) == 0 {
		return
	}

	if data.ProjectName == "" {
		data.ProjectName = project.Name
	}
	if data.Currency == "" {
		data.Currency = project.Currency
	}

	s.insertAndDispatch(ctx, recipients, notifType, entityType, entityID, &projectID, data)
}

// NotifyCommentAdded computes the richer comment recipient set: everyone who
// commented on the thread before, the entity's creator, and any @mentioned
// users — minus the comment author. An empty set is a no-op, not an error.
func (s *Service) NotifyCommentAdded(ctx context.Context, c *model.Comment, data MessageData) {
	set := make(map[int]bool)

	commenterIDs, err := s.comments.DistinctCommenterIDs(ctx, c.EntityType, c.EntityID)
	if err != nil {
		s.logger.Error("Failed to resolve thread commenters",
			zap.String("entity_type", c.EntityType),
			zap.Int("entity_id", c.EntityID),
			zap.Error(err),
		)
		return
	}
	for _, id := range commenterIDs {
		set[id] = true
	}

	creatorID, err := s.comments.EntityCreatorID(ctx, c.EntityType, c.EntityID)
	if err != nil {
		s.logger.Warn("Failed to resolve entity creator",
			zap.String("entity_type", c.EntityType),
			zap.Int("entity_id", c.EntityID),
			zap.Error(err),
		)
	} else {
		set[creatorID] = true
	}

	if names := ExtractMentionNames(c.Body); len(names) > 0 {
		mentioned, err := s.users.FindByDisplayNames(ctx, names)
		if err != nil {
			s.logger.Error("Failed to resolve mentioned users", zap.Error(err))
		} else {
			for _, u := range mentioned {
				set[u.ID] = true
			}
		}
	}

	delete(set, c.AuthorID)
	if len(set) == 0 {
		return
	}

	recipients := make([]int, 0, len(set))
	for id := range set {
		recipients = append(recipients, id)
	}

	s.insertAndDispatch(ctx, recipients, model.NotifTypeCommentAdded, c.EntityType, c.EntityID, &c.ProjectID, data)
}

// NotifyUser writes a single notification for one recipient, used for
// direct events like a partner invitation.
func (s *Service) NotifyUser(
	ctx context.Context,
	userID int,
	notifType, entityType string,
	entityID int,
	projectID *int,
	data MessageData,
) {
	s.insertAndDispatch(ctx, []int{userID}, notifType, entityType, entityID, projectID, data)
}

func (s *Service) insertAndDispatch(
	ctx context.Context,
	recipients []int,
	notifType, entityType string,
	entityID int,
	projectID *int,
	data MessageData,
) {
	msg := RenderMessage(notifType, data)

	notifs := make([]*model.Notification, len(recipients))
	for i, userID := range recipients {
		notifs[i] = &model.Notification{
			UserID:     userID,
			Type:       notifType,
			EntityType: entityType,
			EntityID:   entityID,
			ProjectID:  projectID,
			Message:    msg,
		}
	}

	// All rows land in one batch before any email dispatch begins.
	if err := s.notifs.BulkInsert(ctx, notifs); err != nil {
		s.logger.Error("Failed to insert notifications",
			zap.String("type", notifType),
			zap.Int("recipient_count", len(recipients)),
			zap.Error(err),
		)
		return
	}

	metrics.IncrementFanout(notifType, len(notifs))

	extras := map[string]string{
		"project_name": data.ProjectName,
		"actor_name":   data.ActorName,
	}

	for _, n := range notifs {
		s.dispatcher.DispatchAsync(mq.NotificationCreatedPayload{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Type:           n.Type,
			EntityType:     n.EntityType,
			EntityID:       n.EntityID,
			ProjectID:      n.ProjectID,
			Message:        n.Message,
			Data:           extras,
			CreatedAt:      n.CreatedAt,
		})
	}
}

func dedupe(ids []int, exclude int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
