package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"benchly/domain/dto"
	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const (
	UserIDKey   = "user_id"
	UserNameKey = "user_name"
)

// Auth validates the bearer token and stores the caller's id under UserIDKey.
func Auth(secretKey string, userRepository repository.IUser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.GetHeader("Authorization")
		raw, found := strings.CutPrefix(authorization, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			unauthorized(ctx, "missing bearer token")
			return
		}

		userClaims, err := parseClaims(strings.TrimSpace(raw), secretKey)
		if err != nil {
			unauthorized(ctx, rejectReason(err))
			return
		}

		userID, err := strconv.Atoi(userClaims.Issuer)
		if err != nil {
			unauthorized(ctx, "token has no user")
			return
		}
		_, err = userRepository.GetById(ctx.Request.Context(), userID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			logger.GetLogger().WithField("userId", userID).Warn("Token for unknown user")
			unauthorized(ctx, "user not found")
			return
		case err != nil:
			logger.GetLogger().WithFields(map[string]interface{}{"error": err, "userId": userID}).Error("Error while loading token user")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "user lookup failed", Kind: string(model.ErrKindInternal)})
			return
		}

		ctx.Set(UserIDKey, userID)
		ctx.Set(UserNameKey, userClaims.UserName)
		ctx.Next()
	}
}

// UserID returns the id stored by Auth.
func UserID(ctx *gin.Context) (int, bool) {
	v, ok := ctx.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: message, Kind: "unauthorized"})
}

func rejectReason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "malformed token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			return "token expired or not yet valid"
		}
	}
	return "invalid token"
}

func parseClaims(raw, secretKey string) (model.UserClaims, error) {
	var userClaims model.UserClaims
	err := utils.ParseToken(raw, secretKey, &userClaims)
	return userClaims, err
}
