package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estatehub/internal/model"
	"estatehub/internal/repository"
	"estatehub/internal/util"
)

var digestFrequencies = map[string]bool{
	model.DigestImmediate: true,
	model.DigestDaily:     true,
	model.DigestWeekly:    true,
	model.DigestNever:     true,
}

type PreferenceHandler struct {
	prefRepo  *repository.PreferenceRepository
	jwtSecret string
	logger    *zap.Logger
}

func NewPreferenceHandler(prefRepo *repository.PreferenceRepository, jwtSecret string, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		prefRepo:  prefRepo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Get handles GET /preferences — returns defaults when the user never saved.
func (h *PreferenceHandler) Get(c *gin.Context) {
	pref, err := h.prefRepo.Find(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": pref})
}

// Update handles PUT /preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	var req struct {
		EmailOnCost          *bool  `json:"email_on_cost" binding:"required"`
		EmailOnLargeExpense  *bool  `json:"email_on_large_expense" binding:"required"`
		EmailOnDocument      *bool  `json:"email_on_document" binding:"required"`
		EmailOnTimeline      *bool  `json:"email_on_timeline" binding:"required"`
		EmailDigestFrequency string `json:"email_digest_frequency" binding:"required"`
		Timezone             string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !digestFrequencies[req.EmailDigestFrequency] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid digest frequency"})
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	pref := &model.NotificationPreference{
		UserID:               currentUserID(c),
		EmailOnCost:          *req.EmailOnCost,
		EmailOnLargeExpense:  *req.EmailOnLargeExpense,
		EmailOnDocument:      *req.EmailOnDocument,
		EmailOnTimeline:      *req.EmailOnTimeline,
		EmailDigestFrequency: req.EmailDigestFrequency,
		Timezone:             req.Timezone,
	}
	if err := h.prefRepo.Upsert(c.Request.Context(), pref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": pref})
}

// Unsubscribe handles GET /unsubscribe?token= from email footers. It is
// unauthenticated: the signed token is the authorization. All email is turned
// off for the user the token names.
func (h *PreferenceHandler) Unsubscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	userID, err := util.ParseUnsubscribeToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
		return
	}

	pref, err := h.prefRepo.Find(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}
	pref.DisableAllEmail()

	if err := h.prefRepo.Upsert(c.Request.Context(), pref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}

	h.logger.Info("User unsubscribed from email", zap.Int("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}
