package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estatehub/internal/service/security"
)

type SecurityHandler struct {
	secService *security.Service
}

func NewSecurityHandler(secService *security.Service) *SecurityHandler {
	return &SecurityHandler{secService: secService}
}

// ListEvents handles GET /security/events — the caller's own audit trail,
// newest first.
func (h *SecurityHandler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.secService.UserEvents(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list security events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
