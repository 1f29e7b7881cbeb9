package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// RefreshTokenLength is the length of generated refresh tokens in bytes
	RefreshTokenLength = 32

	// revokedJTICacheSize bounds the in-memory denylist of revoked access tokens.
	// Entries age out naturally once the token's own expiry passes.
	revokedJTICacheSize = 4096
)

// ErrTokenRevoked is returned for access tokens whose JTI has been revoked.
var ErrTokenRevoked = errors.New("token revoked")

// AccessClaims are the claims carried by orbitapi access tokens.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access tokens and tracks revoked JTIs.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	revoked   *lru.Cache[string, time.Time]
}

// NewTokenIssuer creates a token issuer signing with the given secret.
func NewTokenIssuer(secret string, accessTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	cache, err := lru.New[string, time.Time](revokedJTICacheSize)
	if err != nil {
		return nil, fmt.Errorf("create revocation cache: %w", err)
	}
	return &TokenIssuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		revoked:   cache,
	}, nil
}

// IssueAccessToken mints a signed access token for the user.
// Returns the compact token string and its JTI.
func (i *TokenIssuer) IssueAccessToken(userID, email string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, jti, nil
}

// ParseAccessToken verifies the signature and expiry of an access token
// and rejects tokens whose JTI has been revoked.
func (i *TokenIssuer) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := new(AccessClaims)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	if _, revoked := i.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RevokeJTI adds an access token's JTI to the denylist until it expires anyway.
func (i *TokenIssuer) RevokeJTI(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	i.revoked.Add(jti, expiresAt)
}

// GenerateRefreshToken generates a cryptographically secure random refresh token.
// Returns: token (hex string), token hash (SHA256 hex), error.
// Only the hash is persisted; the plaintext token goes to the client.
func GenerateRefreshToken() (string, string, error) {
	tokenBytes := make([]byte, RefreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("generate random token: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)
	return token, HashRefreshToken(token), nil
}

// HashRefreshToken hashes a refresh token for storage/lookup.
// Returns SHA256 hex hash.
func HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
