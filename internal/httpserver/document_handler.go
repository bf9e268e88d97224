package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/service/notify"
)

type DocumentHandler struct {
	docRepo     *repository.DocumentRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	notifier    *notify.Service
}

func NewDocumentHandler(
	docRepo *repository.DocumentRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Service,
) *DocumentHandler {
	return &DocumentHandler{
		docRepo:     docRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create handles POST /projects/:id/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	var req struct {
		FileName string `json:"file_name" binding:"required"`
		FileURL  string `json:"file_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc := &model.Document{
		ProjectID: projectID,
		CreatedBy: userID,
		FileName:  req.FileName,
		FileURL:   req.FileURL,
	}
	id, err := h.docRepo.Insert(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document"})
		return
	}
	doc.ID = id

	actorName := "A partner"
	if u, err := h.userRepo.FindByID(c.Request.Context(), userID); err == nil {
		actorName = u.DisplayName
	}

	h.notifier.NotifyProjectMembers(
		c.Request.Context(), projectID,
		model.NotifTypeDocumentUploaded, "document", doc.ID,
		notify.MessageData{ActorName: actorName, EntityTitle: doc.FileName},
		userID,
	)

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// List handles GET /projects/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, _, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	docs, err := h.docRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
