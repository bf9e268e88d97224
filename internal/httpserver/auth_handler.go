package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/service/auth"
	"estatehub/internal/service/security"
)

type AuthHandler struct {
	authService *auth.Service
	secService  *security.Service
}

func NewAuthHandler(authService *auth.Service, secService *security.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		secService:  secService,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"display_name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ip, ua := security.RequestMetadata(c.Request.Header)

	u, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if u != nil {
				h.secService.LogLoginFailure(c.Request.Context(), u.ID, ip, ua, req.Email)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.secService.LogLoginSuccess(c.Request.Context(), u.ID, ip, ua)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}
