package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. Access tokens authenticate API requests; refresh tokens
// only ever redeem a new pair. The purpose claim is checked on parse so a
// refresh token can never be replayed as an access token (or vice versa),
// even though both are HS256 JWTs.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

type Claims struct {
	UserID  uuid.UUID `json:"user_id"`
	Purpose string    `json:"purpose"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed HS256 token for userID with the given
// purpose and lifetime.
func IssueToken(userID uuid.UUID, purpose, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "threadspire",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates signature, expiry, signing method, and purpose.
func ParseToken(tokenString, expectedPurpose, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject anything but HMAC before verifying; closes the
			// algorithm-confusion hole.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Purpose != expectedPurpose {
		return nil, fmt.Errorf("token purpose %q, expected %q", claims.Purpose, expectedPurpose)
	}

	return claims, nil
}
