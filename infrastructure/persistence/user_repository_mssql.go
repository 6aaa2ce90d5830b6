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

// EnsureUserSchemaMSSQL creates dbo.users on SQL Server if missing.
func EnsureUserSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.users') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.users (
        id INT IDENTITY(1,1) PRIMARY KEY,
        user_name NVARCHAR(80) NOT NULL UNIQUE,
        email NVARCHAR(120) NOT NULL UNIQUE,
        password NVARCHAR(255) NOT NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create users table (mssql): %w", err)
	}
	return nil
}

// UserRepositoryMSSQL is a SQL Server implementation of IUser using database/sql.
type UserRepositoryMSSQL struct{ db *sql.DB }

func NewUserRepositoryMSSQL(db *sql.DB) repository.IUser { return &UserRepositoryMSSQL{db} }

func (r *UserRepositoryMSSQL) GetById(ctx context.Context, id int) (model.User, error) {
	return r.getOne(ctx, `SELECT id, user_name, email, password, created_at, updated_at FROM dbo.[users] WHERE id = @p1`, id, "id")
}

func (r *UserRepositoryMSSQL) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `SELECT id, user_name, email, password, created_at, updated_at FROM dbo.[users] WHERE email = @p1`, email, "email")
}

func (r *UserRepositoryMSSQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	return r.getOne(ctx, `SELECT id, user_name, email, password, created_at, updated_at FROM dbo.[users] WHERE user_name = @p1`, userName, "username")
}

func (r *UserRepositoryMSSQL) getOne(ctx context.Context, query string, arg interface{}, by string) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err != sql.ErrNoRows {
			logger.GetLogger().WithField("error", err).Errorf("mssql: query user by %s failed", by)
		}
		return u, err
	}
	return u, nil
}

func (r *UserRepositoryMSSQL) CreateUser(ctx context.Context, user model.User) (int, error) {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dbo.[users] (user_name, email, password, created_at, updated_at) OUTPUT INSERTED.id VALUES (@p1, @p2, @p3, @p4, SYSDATETIME())`,
		user.UserName, user.Email, user.Password, createdAt).Scan(&id)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("mssql: create user failed")
		return 0, err
	}
	return id, nil
}
