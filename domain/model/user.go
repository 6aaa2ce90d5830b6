package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

type User struct {
	ID        int       `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReqLogin struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	UserName string `json:"username" binding:"required,max=80"`
	Email    string `json:"email"    binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=6"`
}

// UserClaims is the JWT payload. Issuer holds the numeric user id.
type UserClaims struct {
	UserName string `json:"userName"`
	jwt.StandardClaims
}
