package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTTL = 24 * time.Hour
	adminName  = "admin"
)

// Session identifies the user a request acts for.
type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type sessionClaims struct {
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether a username carries the admin capability. It is a
// naming convention, not a credential.
func IsAdmin(username string) bool {
	return strings.EqualFold(username, adminName)
}

func GenerateSessionToken(secret string, s Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateSessionToken(secret, tokenString string) (Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	if !token.Valid {
		return Session{}, fmt.Errorf("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("invalid subject %q: %w", claims.Subject, err)
	}
	return Session{UserID: userID, Username: claims.Username}, nil
}
