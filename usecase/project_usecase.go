package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"benchly/domain/dto"
	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
)

type IProjectUseCase interface {
	Save(ctx context.Context, userID int, req dto.SaveProjectRequest) (*model.Project, error)
	List(ctx context.Context, userID int) ([]dto.ProjectSummary, error)
	Get(ctx context.Context, userID, projectID int) (*dto.ProjectDetail, error)
	Delete(ctx context.Context, userID, projectID int) error
}

type ProjectUseCase struct {
	projectRepo repository.IProject
}

func NewProjectUseCase(projectRepo repository.IProject) IProjectUseCase {
	return &ProjectUseCase{projectRepo: projectRepo}
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (u *ProjectUseCase) Save(ctx context.Context, userID int, req dto.SaveProjectRequest) (*model.Project, error) {
	name := strings.TrimSpace(req.ProjectName)
	if name == "" || isEmptyJSON(req.SearchParams) || isEmptyJSON(req.SearchResults) {
		return nil, model.NewInvalidQueryError("projectName, searchParams and searchResults are required")
	}
	if len(name) > 100 {
		return nil, model.NewInvalidQueryError("projectName must be at most 100 characters")
	}

	project := &model.Project{
		Name:              name,
		UserID:            userID,
		SearchParamsJSON:  string(req.SearchParams),
		SearchResultsJSON: string(req.SearchResults),
	}
	if err := u.projectRepo.Create(ctx, project); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "userId": userID}).Error("Failed to save project")
		return nil, model.NewInternalError("failed to save project", err)
	}
	return project, nil
}

func (u *ProjectUseCase) List(ctx context.Context, userID int) ([]dto.ProjectSummary, error) {
	projects, err := u.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, model.NewInternalError("failed to list projects", err)
	}
	out := make([]dto.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, dto.ProjectSummary{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}
	return out, nil
}

func (u *ProjectUseCase) Get(ctx context.Context, userID, projectID int) (*dto.ProjectDetail, error) {
	project, err := u.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return &dto.ProjectDetail{
		Success:           true,
		SearchParamsJSON:  project.SearchParamsJSON,
		SearchResultsJSON: project.SearchResultsJSON,
	}, nil
}

func (u *ProjectUseCase) Delete(ctx context.Context, userID, projectID int) error {
	if _, err := u.owned(ctx, userID, projectID); err != nil {
		return err
	}
	if err := u.projectRepo.Delete(ctx, projectID); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "projectId": projectID}).Error("Failed to delete project")
		return model.NewInternalError("failed to delete project", err)
	}
	return nil
}

// owned loads a project and checks that userID owns it.
func (u *ProjectUseCase) owned(ctx context.Context, userID, projectID int) (*model.Project, error) {
	project, err := u.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, model.NewInternalError("failed to load project", err)
	}
	if project == nil {
		return nil, model.NewNotFoundError("project not found")
	}
	if project.UserID != userID {
		return nil, model.NewForbiddenError("not allowed to access this project")
	}
	return project, nil
}
