package http

import (
	"net/http"

	"benchly/domain/dto"
	"benchly/interfaces/middleware"
	"benchly/usecase"

	"github.com/gin-gonic/gin"
)

type IProjectHandler interface {
	Save(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
}

type ProjectHandler struct {
	projectUseCase usecase.IProjectUseCase
}

func NewProjectHandler(projectUseCase usecase.IProjectUseCase) IProjectHandler {
	return &ProjectHandler{projectUseCase: projectUseCase}
}

// Save handles POST /api/project/save
func (h *ProjectHandler) Save(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req dto.SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectUseCase.Save(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"project_id": project.ID,
		"message":    "project '" + project.Name + "' saved",
	})
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	projects, err := h.projectUseCase.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": projects})
}

// Get handles GET /api/project/get/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.projectUseCase.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /api/project/delete/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.projectUseCase.Delete(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "project deleted"})
}
