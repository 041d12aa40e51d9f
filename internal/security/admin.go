package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPassword is returned for a wrong admin password
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidToken is returned for a missing, forged or expired admin token
	ErrInvalidToken = errors.New("invalid or expired token")
)

const adminSubject = "sst-admin"

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AdminGuard checks the admin password and issues signed session tokens.
// With no password hash configured the report is open to anyone.
type AdminGuard struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAdminGuard creates a guard. An empty secret is replaced by a random one,
// which invalidates tokens on restart.
func NewAdminGuard(passwordHash, secret string, ttl time.Duration) *AdminGuard {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &AdminGuard{passwordHash: []byte(passwordHash), secret: key, ttl: ttl, now: time.Now}
}

// Open reports whether no admin password is configured
func (g *AdminGuard) Open() bool {
	return len(g.passwordHash) == 0
}

// TTL is how long an issued token stays valid
func (g *AdminGuard) TTL() time.Duration {
	return g.ttl
}

// Login checks password and returns a signed token
func (g *AdminGuard) Login(password string) (string, error) {
	if !g.Open() {
		if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
			return "", ErrInvalidPassword
		}
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Verify validates a token previously returned by Login
func (g *AdminGuard) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
