package utils

import (
	"errors"
	"time"

	"benchly/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

var errSigningMethod = errors.New("unexpected signing method")

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs claims with HS256.
func GenerateToken(claims jwt.Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies an HMAC signed token and fills claims. Tokens signed
// with any other method are rejected before the key is handed out.
func ParseToken(raw, secretKey string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
