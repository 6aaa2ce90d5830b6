package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
)

// EnsureUserSchema creates the users table on Postgres if missing.
func EnsureUserSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS users (
        id SERIAL PRIMARY KEY,
        user_name VARCHAR(80) NOT NULL UNIQUE,
        email VARCHAR(120) NOT NULL UNIQUE,
        password TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

const userColumns = `u.id, u.user_name, u.email, u.password, u.created_at, u.updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetById(ctx context.Context, id int) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users AS u WHERE u.id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users AS u WHERE u.email = $1`, email)
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users AS u WHERE u.user_name = $1`, userName)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing statement")
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, arg).Scan(&user.ID, &user.UserName, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.GetLogger().WithField("error", err).Error("Error while querying user")
	}
	return user, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (int, error) {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO users (user_name, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing statement")
		return 0, err
	}
	defer stmt.Close()

	var id int
	if err := stmt.QueryRowContext(ctx, user.UserName, user.Email, user.Password, createdAt).Scan(&id); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("Error while creating user")
		return 0, err
	}
	return id, nil
}
