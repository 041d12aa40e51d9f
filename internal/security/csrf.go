package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNoSession is returned when a token is requested without a session ID
var ErrNoSession = errors.New("session ID is required")

// CSRFGenerator derives form tokens from the participant session ID with
// HMAC-SHA256, so replicas sharing the secret agree without shared state.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a generator. An empty secret is replaced by a
// random one, which only works for a single process.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &CSRFGenerator{secret: key}
}

// GenerateToken returns the token for sessionID
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token belongs to sessionID
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(sessionID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
