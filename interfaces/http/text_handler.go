package http

import (
	"net/http"

	"benchly/domain/dto"
	"benchly/usecase"

	"github.com/gin-gonic/gin"
)

type ITextHandler interface {
	Summary(c *gin.Context)
	RelatedKeywords(c *gin.Context)
}

type TextHandler struct {
	textUseCase usecase.ITextUseCase
}

func NewTextHandler(textUseCase usecase.ITextUseCase) ITextHandler {
	return &TextHandler{textUseCase: textUseCase}
}

// Summary handles POST /api/get_summary
func (h *TextHandler) Summary(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	html, err := h.textUseCase.Summarize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Success: true, SummaryHTML: html})
}

// RelatedKeywords handles POST /api/get_related_keywords
func (h *TextHandler) RelatedKeywords(c *gin.Context) {
	var req dto.RelatedKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.textUseCase.RelatedKeywords(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
