package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secretKey = []byte("supersecret")

// SetSecret overrides the signing key; called once at startup when
// JWT_SECRET is configured.
func SetSecret(s string) {
	if s != "" {
		secretKey = []byte(s)
	}
}

// GenerateToken signs the (username, role) identity pair the core trusts on
// every call.
func GenerateToken(username, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(2 * time.Hour).Unix(),
	})
	return token.SignedString(secretKey)
}

// VerifyToken returns the username and role carried by a valid token.
func VerifyToken(token string) (string, string, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return "", "", errors.New("could not parse token")
	}
	if !parsedToken.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", "", errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)

	return username, role, nil
}
