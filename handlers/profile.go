package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/middleware"
	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/services"
	"github.com/sarveshwaran777333/Water-buddy/store"
)

// GetProfile returns the profile and settings block without the credential.
func (h *Handlers) GetProfile(c *gin.Context) {
	uid := middleware.UID(c)
	user, err := h.repo.GetUser(c.Request.Context(), uid)
	if err != nil {
		h.storageOrServerError(c, "profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":      user.UID,
		"username": user.Username,
		"profile":  user.Profile,
		"settings": user.Settings,
	})
}

type profileInput struct {
	AgeGroup    *string  `json:"age_group"`
	GoalML      *int     `json:"user_goal_ml"`
	GoalSource  *string  `json:"goal_source"`
	HealthNotes *string  `json:"health_notes"`
	City        *string  `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateProfile merges the provided fields; absent fields keep their stored
// values. Usernames are immutable and not accepted here.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	uid := middleware.UID(c)
	var input profileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}

	user, err := h.repo.GetUser(c.Request.Context(), uid)
	if err != nil {
		h.storageOrServerError(c, "profile", err)
		return
	}

	p := user.Profile
	if input.AgeGroup != nil {
		p.AgeGroup = *input.AgeGroup
	}
	if input.GoalML != nil {
		p.GoalML = *input.GoalML
		if *input.GoalML > 0 && input.GoalSource == nil {
			p.GoalSource = models.GoalSourceManual
		}
	}
	if input.GoalSource != nil {
		p.GoalSource = *input.GoalSource
	}
	if input.HealthNotes != nil {
		p.HealthNotes = *input.HealthNotes
	}
	if input.City != nil {
		p.City = *input.City
		// stale coordinates would pin the weather goal to the old city
		p.Latitude, p.Longitude = 0, 0
	}
	if input.Latitude != nil {
		p.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		p.Longitude = *input.Longitude
	}

	if err := h.repo.UpdateProfile(c.Request.Context(), uid, p); err != nil {
		h.validationOrStorageError(c, "profile", err)
		return
	}
	middleware.InvalidateUserCache(uid)

	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "profile": p})
}

type settingsInput struct {
	Theme    *string `json:"theme"`
	FontSize *string `json:"font_size"`
	Mascot   *string `json:"mascot"`
}

func (h *Handlers) UpdateSettings(c *gin.Context) {
	uid := middleware.UID(c)
	var input settingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	user, err := h.repo.GetUser(c.Request.Context(), uid)
	if err != nil {
		h.storageOrServerError(c, "settings", err)
		return
	}

	s := user.Settings
	if input.Theme != nil {
		s.Theme = *input.Theme
	}
	if input.FontSize != nil {
		s.FontSize = *input.FontSize
	}
	if input.Mascot != nil {
		s.Mascot = *input.Mascot
	}

	if err := h.repo.UpdateSettings(c.Request.Context(), uid, s); err != nil {
		h.validationOrStorageError(c, "settings", err)
		return
	}
	middleware.InvalidateUserCache(uid)

	c.JSON(http.StatusOK, gin.H{"message": "settings saved", "settings": s})
}

func (h *Handlers) storageOrServerError(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
	default:
		h.logger.Error(handler+"_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handlers) validationOrStorageError(c *gin.Context, handler string, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
		return
	}
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	// validator errors land here
	h.logger.Warn(handler+"_rejected", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
