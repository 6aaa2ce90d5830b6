package usecase

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"benchly/domain/dto"
	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/utils"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = &model.DiscoveryError{
	Kind:    model.ErrKindInvalidQuery,
	Status:  http.StatusUnauthorized,
	Message: "invalid email or password",
}

type IUserUsecase interface {
	Register(ctx context.Context, req model.ReqRegister) (dto.LoginResponse, error)
	Login(ctx context.Context, req model.ReqLogin) (dto.LoginResponse, error)
}

type UserUsecase struct {
	userRepository repository.IUser
	secretKey      string
	tokenTTL       time.Duration
}

func NewUserUsecase(userRepository repository.IUser, secretKey string, tokenTTL time.Duration) IUserUsecase {
	return &UserUsecase{userRepository: userRepository, secretKey: secretKey, tokenTTL: tokenTTL}
}

func (u *UserUsecase) Register(ctx context.Context, req model.ReqRegister) (dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	userName := strings.TrimSpace(req.UserName)
	if email == "" || userName == "" || req.Password == "" {
		return dto.LoginResponse{}, model.NewInvalidQueryError("username, email and password are required")
	}

	if _, err := u.userRepository.GetByEmail(ctx, email); err == nil {
		return dto.LoginResponse{}, &model.DiscoveryError{Kind: model.ErrKindInvalidQuery, Status: http.StatusConflict, Message: "email or username already registered"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return dto.LoginResponse{}, model.NewInternalError("failed to check email", err)
	}
	if _, err := u.userRepository.GetByUserName(ctx, userName); err == nil {
		return dto.LoginResponse{}, &model.DiscoveryError{Kind: model.ErrKindInvalidQuery, Status: http.StatusConflict, Message: "email or username already registered"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return dto.LoginResponse{}, model.NewInternalError("failed to check username", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.LoginResponse{}, model.NewInternalError("failed to hash password", err)
	}
	user := model.User{UserName: userName, Email: email, Password: string(hash), CreatedAt: utils.GetCurrentTime()}
	id, err := u.userRepository.CreateUser(ctx, user)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "user_name": userName}).Error("Failed to register user")
		return dto.LoginResponse{}, model.NewInternalError("failed to register user", err)
	}
	user.ID = id
	return u.issue(user)
}

func (u *UserUsecase) Login(ctx context.Context, req model.ReqLogin) (dto.LoginResponse, error) {
	user, err := u.userRepository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.LoginResponse{}, errInvalidCredentials
		}
		return dto.LoginResponse{}, model.NewInternalError("failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return dto.LoginResponse{}, errInvalidCredentials
	}
	return u.issue(user)
}

func (u *UserUsecase) issue(user model.User) (dto.LoginResponse, error) {
	now := utils.GetCurrentTime()
	claims := model.UserClaims{
		UserName: user.UserName,
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.Itoa(user.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(u.tokenTTL).Unix(),
		},
	}
	token, err := utils.GenerateToken(claims, u.secretKey)
	if err != nil {
		return dto.LoginResponse{}, model.NewInternalError("failed to issue token", err)
	}
	return dto.LoginResponse{Success: true, Token: token, UserName: user.UserName}, nil
}
