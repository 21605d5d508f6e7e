// Package authtoken issues and parses the API's HS256 bearer tokens.
package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 24 * time.Hour

var ErrInvalid = errors.New("invalid or expired token")

type Claims struct {
	UserID uint
	Email  string
	Role   string
}

func Issue(secret string, c Claims, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": c.UserID,
		"email":   c.Email,
		"role":    c.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}

func Parse(secret, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalid
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalid
	}
	var c Claims
	if id, ok := mc["user_id"].(float64); ok {
		c.UserID = uint(id)
	}
	c.Email, _ = mc["email"].(string)
	c.Role, _ = mc["role"].(string)
	if c.UserID == 0 {
		return Claims{}, ErrInvalid
	}
	return c, nil
}
