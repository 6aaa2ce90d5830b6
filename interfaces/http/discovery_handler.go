package http

import (
	"net/http"

	"benchly/domain/dto"
	"benchly/usecase"

	"github.com/gin-gonic/gin"
)

type IDiscoveryHandler interface {
	Search(c *gin.Context)
}

type DiscoveryHandler struct {
	discoveryUseCase usecase.IDiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase usecase.IDiscoveryUseCase) IDiscoveryHandler {
	return &DiscoveryHandler{discoveryUseCase: discoveryUseCase}
}

// Search handles POST /api/search
func (h *DiscoveryHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.discoveryUseCase.Search(c.Request.Context(), req.ToQuery())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Items: items})
}
