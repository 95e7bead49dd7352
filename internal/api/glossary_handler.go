package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fequiz/internal/catalog"
)

type GlossaryHandler struct {
	glossary *catalog.Glossary
}

func NewGlossaryHandler(g *catalog.Glossary) *GlossaryHandler {
	return &GlossaryHandler{glossary: g}
}

func (h *GlossaryHandler) available(c *gin.Context) bool {
	if h.glossary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgGlossaryUnavailable})
		return false
	}
	return true
}

func (h *GlossaryHandler) Search(c *gin.Context) {
	if !h.available(c) {
		return
	}
	terms := h.glossary.Search(catalog.CategoryID(c.Query("category")), c.Query("search"))
	c.JSON(http.StatusOK, terms)
}

func (h *GlossaryHandler) Get(c *gin.Context) {
	if !h.available(c) {
		return
	}
	t, err := h.glossary.Term(c.Param("id"))
	if err != nil {
		writeError(c, nil, "get term", err)
		return
	}
	c.JSON(http.StatusOK, t)
}
