package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sarveshwaran777333/Water-buddy/middleware"
	"github.com/sarveshwaran777333/Water-buddy/session"
)

// GetSession reports the caller's active page.
func (h *Handlers) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.GetString(middleware.ContextToken))
	if err != nil {
		// token is valid but the process restarted; re-open on home
		s = h.sessions.Start(c.GetString(middleware.ContextToken), middleware.UID(c))
	}
	c.JSON(http.StatusOK, s)
}

type navigateInput struct {
	Page string `json:"page" binding:"required"`
}

// Navigate moves the session to another page, enforcing the transition
// table so clients cannot jump into illegal states.
func (h *Handlers) Navigate(c *gin.Context) {
	var input navigateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page is required"})
		return
	}

	token := c.GetString(middleware.ContextToken)
	if _, err := h.sessions.Get(token); errors.Is(err, session.ErrNoSession) {
		h.sessions.Start(token, middleware.UID(c))
	}

	s, err := h.sessions.Navigate(token, session.Page(input.Page))
	switch {
	case errors.Is(err, session.ErrUnknownPage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown page"})
		return
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "transition not allowed from current page"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "navigation failed"})
		return
	}
	c.JSON(http.StatusOK, s)
}
