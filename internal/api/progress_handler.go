package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
)

// DefaultHistoryLimit is the number of entries returned without a limit.
const DefaultHistoryLimit = 20

type ProgressHandler struct {
	tracker *mastery.Tracker
	log     *logger.Logger
}

func NewProgressHandler(tracker *mastery.Tracker, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, log: log}
}

func (h *ProgressHandler) Summary(c *gin.Context) {
	s, err := h.tracker.Summary(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "progress summary", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ProgressHandler) Reset(c *gin.Context) {
	if err := h.tracker.Reset(c.Request.Context()); err != nil {
		writeError(c, h.log, "reset progress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "progress reset"})
}

// History returns the newest limit entries; limit <= 0 returns all retained.
func (h *ProgressHandler) History(c *gin.Context) {
	limit := DefaultHistoryLimit
	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	items, err := h.tracker.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.log, "history", err)
		return
	}
	c.JSON(http.StatusOK, items)
}
