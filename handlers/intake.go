package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sarveshwaran777333/Water-buddy/middleware"
	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/services"
)

type intakeInput struct {
	AmountML int    `json:"amount_ml"`
	Note     string `json:"note"`
}

// LogIntake adds water to today's total. Omitting the amount logs the quick
// 250 ml glass.
func (h *Handlers) LogIntake(c *gin.Context) {
	var input intakeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid intake payload"})
		return
	}
	if input.AmountML == 0 {
		input.AmountML = models.DefaultQuickLogML
	}

	status, err := h.hydration.LogIntake(c.Request.Context(), middleware.UID(c), input.AmountML, input.Note)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number of milliliters"})
			return
		}
		h.storageOrServerError(c, "log_intake", err)
		return
	}
	middleware.InvalidateUserCache(middleware.UID(c))

	c.JSON(http.StatusOK, gin.H{"message": "intake logged", "status": status})
}

// ResetToday is the manual reset button.
func (h *Handlers) ResetToday(c *gin.Context) {
	status, err := h.hydration.ResetToday(c.Request.Context(), middleware.UID(c))
	if err != nil {
		h.storageOrServerError(c, "reset_today", err)
		return
	}
	middleware.InvalidateUserCache(middleware.UID(c))

	c.JSON(http.StatusOK, gin.H{"message": "today reset", "status": status})
}

// Dashboard returns today's summary: goal, intake, percent, remaining and
// milestones reached.
func (h *Handlers) Dashboard(c *gin.Context) {
	status, err := h.hydration.Status(c.Request.Context(), middleware.UID(c))
	if err != nil {
		h.storageOrServerError(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// History returns daily totals for the trailing window (?days=N, default 7).
func (h *Handlers) History(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 31 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 31"})
			return
		}
		days = n
	}

	history, err := h.hydration.History(c.Request.Context(), middleware.UID(c), days)
	if err != nil {
		h.storageOrServerError(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": history})
}

// Tasks returns the daily checklist derived from today's intake.
func (h *Handlers) Tasks(c *gin.Context) {
	tasks, err := h.hydration.Tasks(c.Request.Context(), middleware.UID(c))
	if err != nil {
		h.storageOrServerError(c, "tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
