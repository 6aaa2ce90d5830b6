package repository

import (
	"context"

	"benchly/domain/model"
)

type IProject interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id int) (*model.Project, error)
	ListByUser(ctx context.Context, userID int) ([]model.Project, error)
	Delete(ctx context.Context, id int) error
}
