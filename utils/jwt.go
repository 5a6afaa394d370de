package utils

import (
	"errors"
	"time"

	"learnhub/config"
	"learnhub/models"

	"github.com/golang-jwt/jwt/v4"
)

// Claims carried by every issued token.
type TokenClaims struct {
	UserID uint
	Role   models.Role
	Name   string
	Email  string
}

var ErrInvalidToken = errors.New("invalid token")

const tokenLifetime = 7 * 24 * time.Hour

func GenerateJWTToken(user *models.User, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"role":  string(user.Role),
		"name":  user.Name,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ParseJWTToken(tokenString string, cfg *config.Config) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	idFloat, ok := claims["id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &TokenClaims{
		UserID: uint(idFloat),
		Role:   models.Role(role),
		Name:   name,
		Email:  email,
	}, nil
}
