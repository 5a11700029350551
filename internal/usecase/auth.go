package usecase

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/monjez/monjez/internal/config"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the credentials and issues a signed token carrying the
// user id and role.
func (u Usecase) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", User{}, fmt.Errorf("invalid credentials")
	}

	expireHours := 72
	if h, err := strconv.Atoi(os.Getenv(config.ENV_KEY_JWT_EXPIRE_HOURS)); err == nil && h > 0 {
		expireHours = h
	}

	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv(config.ENV_KEY_JWT_SECRET)))
	if err != nil {
		return "", User{}, fmt.Errorf("sign token: %w", err)
	}

	user.PasswordHash = ""
	return signed, user, nil
}

// VerifyToken parses a bearer token and returns the user id and role it
// carries. Used by the auth middleware.
func (u Usecase) VerifyToken(ctx context.Context, tokenStr string) (uuid.UUID, string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv(config.ENV_KEY_JWT_SECRET)), nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid subject: %w", err)
	}
	return userID, claims.Role, nil
}
