package api

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
)

// DefaultRandomCount is the batch size when count is not given.
const DefaultRandomCount = 5

type QuestionHandler struct {
	bank    *catalog.Bank
	tracker *mastery.Tracker
	log     *logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewQuestionHandler(bank *catalog.Bank, tracker *mastery.Tracker, rng *rand.Rand, log *logger.Logger) *QuestionHandler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &QuestionHandler{bank: bank, tracker: tracker, rng: rng, log: log}
}

func (h *QuestionHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.bank.Categories())
}

// List returns stripped questions filtered by category, subcategory and
// difficulty.
func (h *QuestionHandler) List(c *gin.Context) {
	qs := h.bank.Filter(catalog.Filter{
		Category:    catalog.CategoryID(c.Query("category")),
		Subcategory: c.Query("subcategory"),
		Difficulty:  catalog.Difficulty(c.Query("difficulty")),
	})
	c.JSON(http.StatusOK, catalog.PublicQuestions(qs))
}

// ListWithStatus returns question rows with the learner's answer status.
func (h *QuestionHandler) ListWithStatus(c *gin.Context) {
	rows, err := h.tracker.QuestionList(c.Request.Context(), catalog.Filter{
		Category:   catalog.CategoryID(c.Query("category")),
		Difficulty: catalog.Difficulty(c.Query("difficulty")),
		Search:     c.Query("search"),
	})
	if err != nil {
		writeError(c, h.log, "list questions", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Random returns up to count random questions. A count of zero or less
// returns every question in the category.
func (h *QuestionHandler) Random(c *gin.Context) {
	count := DefaultRandomCount
	if raw, ok := c.GetQuery("count"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "count must be an integer")
			return
		}
		count = n
	}

	h.rngMu.Lock()
	qs := h.bank.Random(h.rng, catalog.CategoryID(c.Query("category")), count)
	h.rngMu.Unlock()

	c.JSON(http.StatusOK, catalog.PublicQuestions(qs))
}

func (h *QuestionHandler) Weak(c *gin.Context) {
	qs, err := h.tracker.WeakQuestions(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "weak questions", err)
		return
	}
	c.JSON(http.StatusOK, catalog.PublicQuestions(qs))
}

func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.bank.Question(c.Param("id"))
	if err != nil {
		writeError(c, h.log, "get question", err)
		return
	}
	c.JSON(http.StatusOK, q.Public())
}
