package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
)

// AnswerRequest is the body of POST /api/answer. Either SelectedAnswer
// (-1 for a timeout, 0..3 otherwise) or TimedOut must be given.
type AnswerRequest struct {
	QuestionID     string `json:"questionId" binding:"required"`
	SelectedAnswer *int   `json:"selectedAnswer,omitempty"`
	TimedOut       bool   `json:"timedOut,omitempty"`
}

// Answer converts the request into an Answer.
func (r AnswerRequest) Answer() (mastery.Answer, error) {
	if r.TimedOut {
		if r.SelectedAnswer != nil && *r.SelectedAnswer != mastery.TimeoutIndex {
			return mastery.Answer{}, mastery.ErrInvalidAnswer
		}
		return mastery.TimedOut(), nil
	}
	if r.SelectedAnswer == nil {
		return mastery.Answer{}, mastery.ErrInvalidAnswer
	}
	return mastery.AnswerFromIndex(*r.SelectedAnswer)
}

// NewAnswerRequest encodes ans for the wire.
func NewAnswerRequest(questionID string, ans mastery.Answer) AnswerRequest {
	idx := ans.Index()
	return AnswerRequest{QuestionID: questionID, SelectedAnswer: &idx, TimedOut: ans.IsTimeout()}
}

type AnswerHandler struct {
	tracker *mastery.Tracker
	log     *logger.Logger
}

func NewAnswerHandler(tracker *mastery.Tracker, log *logger.Logger) *AnswerHandler {
	return &AnswerHandler{tracker: tracker, log: log}
}

func (h *AnswerHandler) Submit(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ans, err := req.Answer()
	if err != nil {
		badRequest(c, "selectedAnswer must be -1..3, or timedOut must be true")
		return
	}

	res, err := h.tracker.SubmitAnswer(c.Request.Context(), req.QuestionID, ans)
	if err != nil {
		writeError(c, h.log, "submit answer", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
