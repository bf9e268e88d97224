package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/service/notify"
)

var commentEntityTypes = map[string]bool{
	"cost":           true,
	"document":       true,
	"timeline_event": true,
	"project":        true,
}

type CommentHandler struct {
	commentRepo *repository.CommentRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	notifier    *notify.Service
}

func NewCommentHandler(
	commentRepo *repository.CommentRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Service,
) *CommentHandler {
	return &CommentHandler{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

type commentResponse struct {
	model.Comment
	IsEdited bool `json:"is_edited"`
}

// Create handles POST /projects/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	var req struct {
		EntityType string `json:"entity_type" binding:"required"`
		EntityID   int    `json:"entity_id" binding:"required"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !commentEntityTypes[req.EntityType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity type"})
		return
	}

	comment := &model.Comment{
		ProjectID:  projectID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		AuthorID:   userID,
		Body:       req.Body,
	}
	id, err := h.commentRepo.Insert(c.Request.Context(), comment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		return
	}
	comment.ID = id

	actorName := "A partner"
	if u, err := h.userRepo.FindByID(c.Request.Context(), userID); err == nil {
		actorName = u.DisplayName
	}
	projectName := ""
	if p, err := h.projectRepo.FindByID(c.Request.Context(), projectID); err == nil {
		projectName = p.Name
	}

	h.notifier.NotifyCommentAdded(c.Request.Context(), comment, notify.MessageData{
		ActorName:   actorName,
		ProjectName: projectName,
	})

	c.JSON(http.StatusCreated, gin.H{"comment": commentResponse{Comment: *comment}})
}

// List handles GET /projects/:id/comments?entity_type=cost&entity_id=12
func (h *CommentHandler) List(c *gin.Context) {
	_, _, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	entityType := c.Query("entity_type")
	entityID, err := strconv.Atoi(c.Query("entity_id"))
	if err != nil || !commentEntityTypes[entityType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity reference"})
		return
	}

	comments, err := h.commentRepo.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}

	out := make([]commentResponse, len(comments))
	for i, cm := range comments {
		out[i] = commentResponse{Comment: cm, IsEdited: cm.IsEdited()}
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}
