package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	projectCollection = "projects"
	counterCollection = "counters"
)

// projectDocument keeps the integer ids the HTTP routes expose; they come
// from a counter document rather than ObjectIDs.
type projectDocument struct {
	ID                int       `bson:"_id"`
	Name              string    `bson:"project_name"`
	UserID            int       `bson:"user_id"`
	SearchParamsJSON  string    `bson:"search_params_json"`
	SearchResultsJSON string    `bson:"search_results_json,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

type ProjectRepositoryMongo struct {
	db *mongo.Database
}

func NewProjectRepositoryMongo(db *mongo.Database) repository.IProject {
	return &ProjectRepositoryMongo{db: db}
}

// EnsureProjectIndexes creates the index the per-user listing relies on.
func EnsureProjectIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(projectCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *ProjectRepositoryMongo) Create(ctx context.Context, project *model.Project) error {
	id, err := r.nextID(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while allocating project id")
		return err
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	project.ID = id

	if _, err := r.db.Collection(projectCollection).InsertOne(ctx, toProjectDocument(*project)); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating project")
		return err
	}
	return nil
}

func (r *ProjectRepositoryMongo) GetByID(ctx context.Context, id int) (*model.Project, error) {
	var doc projectDocument
	err := r.db.Collection(projectCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	project := doc.toModel()
	return &project, nil
}

func (r *ProjectRepositoryMongo) ListByUser(ctx context.Context, userID int) ([]model.Project, error) {
	cursor, err := r.db.Collection(projectCollection).Find(ctx, bson.D{{Key: "user_id", Value: userID}}, listOptions())
	if err != nil {
		return nil, err
	}
	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	projects := make([]model.Project, 0, len(docs))
	for _, doc := range docs {
		projects = append(projects, doc.toModel())
	}
	return projects, nil
}

func (r *ProjectRepositoryMongo) Delete(ctx context.Context, id int) error {
	_, err := r.db.Collection(projectCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}

func (r *ProjectRepositoryMongo) nextID(ctx context.Context) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.db.Collection(counterCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: projectCollection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: 1}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next project id: %w", err)
	}
	return counter.Seq, nil
}

// listOptions mirrors the SQL listing: newest first, payloads left out.
func listOptions() *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.D{
			{Key: "search_params_json", Value: 0},
			{Key: "search_results_json", Value: 0},
		})
}

func toProjectDocument(p model.Project) projectDocument {
	return projectDocument{
		ID:                p.ID,
		Name:              p.Name,
		UserID:            p.UserID,
		SearchParamsJSON:  p.SearchParamsJSON,
		SearchResultsJSON: p.SearchResultsJSON,
		CreatedAt:         p.CreatedAt.UTC(),
	}
}

func (d projectDocument) toModel() model.Project {
	return model.Project{
		ID:                d.ID,
		Name:              d.Name,
		UserID:            d.UserID,
		SearchParamsJSON:  d.SearchParamsJSON,
		SearchResultsJSON: d.SearchResultsJSON,
		CreatedAt:         d.CreatedAt.UTC(),
	}
}
