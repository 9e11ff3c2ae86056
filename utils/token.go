package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Token scopes. Admin tokens belong to a back-office user; service
// tokens are minted out of band for the storefront's /service routes.
const (
	ScopeAdmin   = "admin"
	ScopeService = "service"
)

type JwtCustomClaim struct {
	UserID int    `json:"user_id"`
	Scope  string `json:"scope"`
	jwt.StandardClaims
}

// IsService reports whether the token was minted for service-to-service
// calls rather than a back-office user.
func (c *JwtCustomClaim) IsService() bool {
	return c != nil && c.Scope == ScopeService
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "CactusCup-Secret"
	}
	return secret
}

func JwtGenerate(userID int, scope string) (string, error) {
	token_lifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		token_lifespan = 24
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserID: userID,
		Scope:  scope,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour * time.Duration(token_lifespan)).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
