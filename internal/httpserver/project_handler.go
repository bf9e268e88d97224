package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/service/notify"
	"estatehub/internal/service/security"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	costRepo    *repository.CostRepository
	userRepo    *repository.UserRepository
	notifier    *notify.Service
	secService  *security.Service
	logger      *zap.Logger
}

func NewProjectHandler(
	projectRepo *repository.ProjectRepository,
	costRepo *repository.CostRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Service,
	secService *security.Service,
	logger *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		costRepo:    costRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		secService:  secService,
		logger:      logger,
	}
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Currency    string `json:"currency"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	p := &model.Project{
		OwnerID:     currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		Currency:    req.Currency,
	}

	id, err := h.projectRepo.Insert(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	p.ID = id

	c.JSON(http.StatusCreated, gin.H{"project": p})
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectRepo.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, _, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	p, err := h.projectRepo.FindByID(c.Request.Context(), projectID)
	if err != nil || p.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

// Invite handles POST /projects/:id/invite
func (h *ProjectHandler) Invite(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	invitee, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user with that email"})
		return
	}

	access := &model.ProjectAccess{
		ProjectID: projectID,
		UserID:    invitee.ID,
		InvitedBy: userID,
	}
	accessID, err := h.projectRepo.InviteUser(c.Request.Context(), access)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invitation"})
		return
	}
	access.ID = accessID

	actor, project := h.actorAndProject(c, userID, projectID)
	h.notifier.NotifyUser(
		c.Request.Context(),
		invitee.ID,
		model.NotifTypePartnerInvited,
		"project",
		projectID,
		&projectID,
		notify.MessageData{ActorName: actor, ProjectName: project},
	)

	c.JSON(http.StatusCreated, gin.H{"invitation": access})
}

// AcceptInvite handles POST /invitations/:id/accept
func (h *ProjectHandler) AcceptInvite(c *gin.Context) {
	accessID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation id"})
		return
	}
	userID := currentUserID(c)

	access, err := h.projectRepo.AcceptInvite(c.Request.Context(), accessID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}

	actor, project := h.actorAndProject(c, userID, access.ProjectID)
	h.notifier.NotifyProjectMembers(
		c.Request.Context(),
		access.ProjectID,
		model.NotifTypePartnerInvited,
		"project",
		access.ProjectID,
		notify.MessageData{ActorName: actor, ProjectName: project},
		userID,
	)

	c.JSON(http.StatusOK, gin.H{"invitation": access})
}

// Backup handles GET /projects/:id/backup — a JSON export of the project and
// its costs. Downloads are security-audited.
func (h *ProjectHandler) Backup(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	p, err := h.projectRepo.FindByID(c.Request.Context(), projectID)
	if err != nil || p.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	costs, err := h.costRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export project"})
		return
	}

	ip, ua := security.RequestMetadata(c.Request.Header)
	h.secService.LogBackupDownloaded(c.Request.Context(), userID, ip, ua, p.ID, p.Name)

	c.JSON(http.StatusOK, gin.H{"project": p, "costs": costs})
}

func (h *ProjectHandler) actorAndProject(c *gin.Context, userID, projectID int) (string, string) {
	actorName := "A partner"
	if u, err := h.userRepo.FindByID(c.Request.Context(), userID); err == nil {
		actorName = u.DisplayName
	}
	projectName := ""
	if p, err := h.projectRepo.FindByID(c.Request.Context(), projectID); err == nil {
		projectName = p.Name
	}
	return actorName, projectName
}
