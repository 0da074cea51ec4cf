package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenVerifies(t *testing.T) {
	var key Key
	tok, err := NewToken(key, 0, 1712345678901, time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	claims, err := Verify(tok, key, 0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ClientID != 1712345678901 {
		t.Fatalf("client id = %d", claims.ClientID)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}
}

func TestTokenWrongKey(t *testing.T) {
	var key, other Key
	other[0] = 1
	tok, _ := NewToken(key, 0, 1, time.Minute)
	if _, err := Verify(tok, other, 0); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongProtocol(t *testing.T) {
	var key Key
	tok, _ := NewToken(key, 7, 1, time.Minute)
	if _, err := Verify(tok, key, 8); !errors.Is(err, ErrProtocolMismatch) {
		t.Fatalf("err = %v, want ErrProtocolMismatch", err)
	}
}

func TestTokenExpired(t *testing.T) {
	var key Key
	tok, _ := NewToken(key, 0, 1, -time.Minute)
	if _, err := Verify(tok, key, 0); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("")
	if err != nil || k != (Key{}) {
		t.Fatalf("empty key = %v, %v", k, err)
	}
	k, err = ParseKey("ff" + strings.Repeat("00", 31))
	if err != nil || k[0] != 0xff || k[1] != 0 {
		t.Fatalf("parsed key = %v, %v", k, err)
	}
	if _, err := ParseKey("abc"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := ParseKey(strings.Repeat("zz", 32)); err == nil {
		t.Fatalf("expected hex error")
	}
}
