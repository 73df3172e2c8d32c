package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/middleware"
	"github.com/sarveshwaran777333/Water-buddy/services"
	"github.com/sarveshwaran777333/Water-buddy/store"
	"github.com/sarveshwaran777333/Water-buddy/utils"
)

type credentialsInput struct {
	Username string `json:"username" binding:"required" validate:"min=1,max=50"`
	Password string `json:"password" binding:"required" validate:"min=4"`
}

// Register creates an account and logs the user straight in.
func (h *Handlers) Register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 1-50 chars, password at least 4"})
		return
	}

	uid, err := h.accounts.Register(c.Request.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	case errors.Is(err, store.ErrUnavailable):
		utils.ErrorCount.WithLabelValues("register", "storage").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
		return
	case err != nil:
		h.logger.Error("register_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	token, err := utils.GenerateToken(uid, input.Username, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("token_generation_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	h.sessions.Start(token, uid)

	c.JSON(http.StatusCreated, gin.H{
		"message": "account created",
		"token":   token,
		"user": gin.H{
			"uid":      uid,
			"username": input.Username,
		},
	})
}

// Login validates credentials and issues a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	uid, err := h.accounts.Authenticate(c.Request.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	case errors.Is(err, store.ErrUnavailable):
		utils.ErrorCount.WithLabelValues("login", "storage").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
		return
	case err != nil:
		h.logger.Error("login_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, err := utils.GenerateToken(uid, input.Username, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("token_generation_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	h.sessions.Start(token, uid)

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   token,
		"user": gin.H{
			"uid":      uid,
			"username": input.Username,
		},
	})
}

// Logout ends the in-memory session; the bearer token simply expires.
func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.End(c.GetString(middleware.ContextToken))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
