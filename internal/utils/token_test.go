package utils

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tokenType := range []string{TokenTypeAccess, TokenTypeRefresh} {
		issue := NewAccessToken
		if tokenType == TokenTypeRefresh {
			issue = NewRefreshToken
		}
		issued, err := issue("secret", "a@x.com", 42, time.Hour)
		if err != nil {
			t.Fatalf("issue %s: %v", tokenType, err)
		}

		claims, err := VerifyToken("secret", issued.Token, tokenType)
		if err != nil {
			t.Fatalf("verify %s: %v", tokenType, err)
		}
		if claims.Subject != "a@x.com" {
			t.Fatalf("subject mismatch: got %q", claims.Subject)
		}
		if claims.UserID != 42 {
			t.Fatalf("user_id mismatch: got %d", claims.UserID)
		}
		if claims.TokenType != tokenType {
			t.Fatalf("type mismatch: got %q want %q", claims.TokenType, tokenType)
		}
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	issued, err := NewAccessToken("secret", "a@x.com", 1, -time.Second)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = VerifyToken("secret", issued.Token, TokenTypeAccess)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issued, err := NewAccessToken("right-secret", "a@x.com", 1, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = VerifyToken("wrong-secret", issued.Token, TokenTypeAccess)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := VerifyToken("secret", "not.a.jwt", TokenTypeAccess)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyToken_WrongType(t *testing.T) {
	t.Parallel()

	// A perfectly valid access token must not pass where a refresh token
	// is expected, and vice versa.
	access, err := NewAccessToken("secret", "a@x.com", 1, time.Hour)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := VerifyToken("secret", access.Token, TokenTypeRefresh); !errors.Is(err, ErrTokenWrongType) {
		t.Fatalf("expected ErrTokenWrongType, got %v", err)
	}

	refresh, err := NewRefreshToken("secret", "a@x.com", 1, time.Hour)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if _, err := VerifyToken("secret", refresh.Token, TokenTypeAccess); !errors.Is(err, ErrTokenWrongType) {
		t.Fatalf("expected ErrTokenWrongType, got %v", err)
	}
}

func TestNewActionToken(t *testing.T) {
	t.Parallel()

	t1, err := NewActionToken()
	if err != nil {
		t.Fatalf("NewActionToken: %v", err)
	}
	t2, err := NewActionToken()
	if err != nil {
		t.Fatalf("NewActionToken: %v", err)
	}
	if len(t1) != 64 {
		t.Fatalf("unexpected token length %d", len(t1))
	}
	if t1 == t2 {
		t.Fatalf("two action tokens must not collide")
	}
}
