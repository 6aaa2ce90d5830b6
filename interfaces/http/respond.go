package http

import (
	"net/http"
	"strconv"

	"benchly/domain/dto"
	"benchly/domain/model"
	"benchly/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

const (
	ErrorUnmarshal = "Error while unmarshal"
)

func respondError(c *gin.Context, err error) {
	status := model.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"path":  c.FullPath(),
		}).Error("Request failed")
	}
	c.JSON(status, dto.ErrorResponse{Error: model.MessageOf(err), Kind: string(model.KindOf(err))})
}

func respondBindError(c *gin.Context, err error) {
	logger.GetLogger().WithField("error", err).Warn(ErrorUnmarshal)
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Kind:  string(model.ErrKindInvalidQuery),
	})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id", Kind: string(model.ErrKindInvalidQuery)})
		return 0, false
	}
	return id, true
}
