package utils // package utils provides helper functions for token creation and verification

import (
	"crypto/rand"  // secure random number generation for action tokens
	"encoding/hex" // hex encoding of random token bytes
	"errors"       // sentinel error classification
	"time"         // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token type discriminators carried in the "type" claim.  A token of one
// type must never be accepted where the other is expected, even when its
// signature and expiry check out.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Verification failures are classified so the session lifecycle layer can
// branch internally (for example a revocation check only makes sense for a
// token that verified).  The distinction is never surfaced to end users.
var (
	// ErrTokenMalformed covers forged, truncated or mis-signed tokens.
	ErrTokenMalformed = errors.New("token malformed or forged")
	// ErrTokenExpired means the signature was fine but exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenWrongType means a valid token was presented in the wrong slot.
	ErrTokenWrongType = errors.New("token has wrong type")
)

// Claims is the signed claim set embedded in both access and refresh
// tokens.  Subject carries the account email; UserID the immutable record
// id.  Expiry and issue time live in the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"type"`
}

// IssuedToken bundles a serialized JWT with its expiry so callers can
// report expires_in and size store TTLs without reparsing.
type IssuedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs a short-lived HS256 access token for a
// subject.  The ttl is added to the current UTC time to form the exp claim.
func NewAccessToken(secret, email string, userID uint64, ttl time.Duration) (IssuedToken, error) {
	return newSignedToken(secret, email, userID, TokenTypeAccess, ttl)
}

// NewRefreshToken builds and signs a long-lived HS256 refresh token.  The
// token is also persisted server-side keyed by subject, which is what makes
// it revocable despite being self-contained.
func NewRefreshToken(secret, email string, userID uint64, ttl time.Duration) (IssuedToken, error) {
	return newSignedToken(secret, email, userID, TokenTypeRefresh, ttl)
}

func newSignedToken(secret, email string, userID uint64, tokenType string, ttl time.Duration) (IssuedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID,
		TokenType: tokenType,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token, then checks its type
// discriminator.  Failures come back as one of the sentinel errors above:
// expiry is reported as ErrTokenExpired, every other parse or signature
// problem as ErrTokenMalformed, and a type mismatch as ErrTokenWrongType.
func VerifyToken(secret, raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; accepting a
		// different method would let a forged token pick its own key.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.TokenType != wantType {
		return nil, ErrTokenWrongType
	}
	return claims, nil
}

// NewActionToken returns an opaque random token for the single-use flows
// (email verification, password reset).  It carries no claims; its meaning
// lives entirely in the ephemeral store entry that maps it to an email.
func NewActionToken() (string, error) {
	return randomHex(32) // 32 bytes -> 64 hex chars
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
