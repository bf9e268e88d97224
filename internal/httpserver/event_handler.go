package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/service/notify"
)

type EventHandler struct {
	eventRepo   *repository.EventRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	notifier    *notify.Service
}

func NewEventHandler(
	eventRepo *repository.EventRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Service,
) *EventHandler {
	return &EventHandler{
		eventRepo:   eventRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create handles POST /projects/:id/events
func (h *EventHandler) Create(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	var req struct {
		Title     string    `json:"title" binding:"required"`
		EventDate time.Time `json:"event_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event := &model.TimelineEvent{
		ProjectID: projectID,
		CreatedBy: userID,
		Title:     req.Title,
		EventDate: req.EventDate,
	}
	id, err := h.eventRepo.Insert(c.Request.Context(), event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
		return
	}
	event.ID = id

	actorName := "A partner"
	if u, err := h.userRepo.FindByID(c.Request.Context(), userID); err == nil {
		actorName = u.DisplayName
	}

	h.notifier.NotifyProjectMembers(
		c.Request.Context(), projectID,
		model.NotifTypeTimelineEvent, "timeline_event", event.ID,
		notify.MessageData{ActorName: actorName, EntityTitle: event.Title},
		userID,
	)

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// List handles GET /projects/:id/events
func (h *EventHandler) List(c *gin.Context) {
	projectID, _, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	events, err := h.eventRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
