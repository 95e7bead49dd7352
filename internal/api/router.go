package api

import (
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
)

// RouterConfig holds the router's collaborators. Glossary may be nil when
// the glossary dataset could not be loaded.
type RouterConfig struct {
	Bank        *catalog.Bank
	Glossary    *catalog.Glossary
	Tracker     *mastery.Tracker
	Log         *logger.Logger
	CORSOrigins []string

	// Rand seeds random batches; nil uses a randomly seeded source.
	Rand *rand.Rand
}

// NewRouter builds the HTTP surface.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(CORS(cfg.CORSOrigins))

	questions := NewQuestionHandler(cfg.Bank, cfg.Tracker, cfg.Rand, log)
	answers := NewAnswerHandler(cfg.Tracker, log)
	progress := NewProgressHandler(cfg.Tracker, log)
	glossary := NewGlossaryHandler(cfg.Glossary)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/categories", questions.Categories)
		api.GET("/questions", questions.List)
		api.GET("/questions/list", questions.ListWithStatus)
		api.GET("/questions/random", questions.Random)
		api.GET("/questions/weak", questions.Weak)
		api.GET("/questions/:id", questions.Get)

		api.POST("/answer", answers.Submit)

		api.GET("/progress", progress.Summary)
		api.POST("/progress/reset", progress.Reset)
		api.GET("/history", progress.History)

		api.GET("/glossary", glossary.Search)
		api.GET("/glossary/:id", glossary.Get)
	}

	return r
}
