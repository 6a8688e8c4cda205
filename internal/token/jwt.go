package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mnibras/user-manager-api/internal/model"
)

// Claims represents JWT claims asserting an identity and its
// authority set.
type Claims struct {
	jwt.RegisteredClaims
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// JWT implements TokenManager backed by symmetric HMAC. The signing
// key is process-wide configuration and never part of the token.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

// NewJWT creates a new JWT token manager with the provided secret key
// and token lifetime.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl}
}

const issuer = "user-manager-api"

// Generate creates a signed, time-bounded token for the user. The
// subject is the external user id and the authority set is captured at
// issuance; the random jti makes any two tokens distinct even when
// minted in the same instant.
func (j *JWT) Generate(user model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Username:    user.Username,
		Authorities: user.Role.Authorities(),
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Parse validates a token and extracts the asserted principal.
func (j *JWT) Parse(tokenString string) (model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("token is invalid")
	}

	return model.Principal{
		UserID:      claims.Subject,
		Username:    claims.Username,
		Authorities: claims.Authorities,
	}, nil
}
