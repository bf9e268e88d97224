package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estatehub/internal/model"
)

const defaultEmailLogLimit = 50

type EmailLogStore interface {
	ListByUser(ctx context.Context, userID, limit int) ([]model.EmailLog, error)
}

// EmailLogHandler exposes a user's own send history for audit and debugging.
type EmailLogHandler struct {
	logs EmailLogStore
}

func NewEmailLogHandler(logs EmailLogStore) *EmailLogHandler {
	return &EmailLogHandler{logs: logs}
}

// List handles GET /emails
func (h *EmailLogHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit <= 0 {
		limit = defaultEmailLogLimit
	}

	logs, err := h.logs.ListByUser(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list email history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": logs})
}
