package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/service/notify"
)

type CostHandler struct {
	costRepo       *repository.CostRepository
	projectRepo    *repository.ProjectRepository
	userRepo       *repository.UserRepository
	notifier       *notify.Service
	largeThreshold float64
}

func NewCostHandler(
	costRepo *repository.CostRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Service,
	largeThreshold float64,
) *CostHandler {
	return &CostHandler{
		costRepo:       costRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		largeThreshold: largeThreshold,
	}
}

// Create handles POST /projects/:id/costs
func (h *CostHandler) Create(c *gin.Context) {
	projectID, userID, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	var req struct {
		Title    string  `json:"title" binding:"required"`
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Category string  `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cost := &model.Cost{
		ProjectID: projectID,
		CreatedBy: userID,
		Title:     req.Title,
		Amount:    req.Amount,
		Category:  req.Category,
	}
	id, err := h.costRepo.Insert(c.Request.Context(), cost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create cost"})
		return
	}
	cost.ID = id

	actorName := "A partner"
	if u, err := h.userRepo.FindByID(c.Request.Context(), userID); err == nil {
		actorName = u.DisplayName
	}

	data := notify.MessageData{
		ActorName:   actorName,
		EntityTitle: cost.Title,
		Amount:      cost.Amount,
	}
	h.notifier.NotifyProjectMembers(
		c.Request.Context(), projectID,
		model.NotifTypeCostAdded, "cost", cost.ID,
		data, userID,
	)

	// Large spends additionally raise the safety alert, which skips the
	// digest queue and the rate limiter.
	if cost.Amount >= h.largeThreshold {
		h.notifier.NotifyProjectMembers(
			c.Request.Context(), projectID,
			model.NotifTypeLargeExpense, "cost", cost.ID,
			data, userID,
		)
	}

	c.JSON(http.StatusCreated, gin.H{"cost": cost})
}

// List handles GET /projects/:id/costs
func (h *CostHandler) List(c *gin.Context) {
	projectID, _, ok := requireProjectAccess(c, h.projectRepo)
	if !ok {
		return
	}

	costs, err := h.costRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list costs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"costs": costs})
}
