package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
)

// User-facing error messages.
const (
	msgQuestionNotFound    = "question not found"
	msgTermNotFound        = "term not found"
	msgInternal            = "internal server error"
	msgGlossaryUnavailable = "glossary unavailable"
)

// writeError maps err onto a status and a JSON body. Details of server-side
// failures go to the log only.
func writeError(c *gin.Context, log *logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgQuestionNotFound})
	case errors.Is(err, catalog.ErrTermNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgTermNotFound})
	case errors.Is(err, mastery.ErrInvalidAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if log != nil {
			log.With("request_id", c.GetString(requestIDKey)).Error(op+" failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
