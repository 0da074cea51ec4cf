// Package auth mints and verifies connect tokens. A token proves the client
// knows the shared key and speaks the expected protocol id.
package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const KeySize = 32

type Key [KeySize]byte

var (
	ErrInvalidToken     = errors.New("invalid connect token")
	ErrProtocolMismatch = errors.New("protocol id mismatch")
)

// Claims are the connect token claims.
type Claims struct {
	jwt.RegisteredClaims
	ClientID   uint64 `json:"cid"`
	ProtocolID uint64 `json:"pid"`
}

func NewToken(key Key, protocolID, clientID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(clientID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ClientID:   clientID,
		ProtocolID: protocolID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key[:])
	if err != nil {
		return "", fmt.Errorf("sign connect token: %w", err)
	}
	return s, nil
}

func Verify(tokenStr string, key Key, protocolID uint64) (*Claims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKey
		}
		return key[:], nil
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ProtocolID != protocolID {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrProtocolMismatch, claims.ProtocolID, protocolID)
	}
	return claims, nil
}

// ParseKey decodes a 64 character hex key. An empty string yields the zero key.
func ParseKey(s string) (Key, error) {
	var k Key
	if s == "" {
		return k, nil
	}
	if len(s) != 2*KeySize {
		return k, fmt.Errorf("key must be %d hex characters, got %d", 2*KeySize, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("parse key: %w", err)
	}
	copy(k[:], b)
	return k, nil
}
