// Package auth implements the single admin login of the console: a bcrypt
// password check and a signed session cookie.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
)

// Config is the admin account and session settings.
type Config struct {
	Email        string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// Claims holds the session token claims. The token ID is the session id.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session identifier.
func (c *Claims) SessionID() string {
	return c.ID
}

// Authenticator checks credentials and issues and verifies session tokens.
type Authenticator struct {
	email  string
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // sid -> token expiry
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// compared against when the email does not match, so both failure paths
// cost one bcrypt comparison.
func dummy() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	})
	return dummyHash
}

// New validates cfg and returns an Authenticator.
func New(cfg Config) (*Authenticator, error) {
	if cfg.Email == "" || cfg.PasswordHash == "" {
		return nil, errors.New("auth: admin email and password hash are required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("auth: password hash: %w", err)
	}
	if len(cfg.Secret) < 32 {
		return nil, errors.New("auth: session secret must be at least 32 characters")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Authenticator{
		email:   strings.ToLower(strings.TrimSpace(cfg.Email)),
		hash:    []byte(cfg.PasswordHash),
		secret:  []byte(cfg.Secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

// TTL returns the session lifetime.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Login checks the credentials and returns a signed session token. Any
// mismatch yields apperr.ErrInvalidCredentials, whichever part was wrong.
func (a *Authenticator) Login(email, password string) (string, *Claims, error) {
	given := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(a.email)) == 1

	hash := a.hash
	if !emailOK {
		hash = dummy()
	}
	pwErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !emailOK || pwErr != nil {
		return "", nil, apperr.ErrInvalidCredentials
	}
	return a.issue()
}

func (a *Authenticator) issue() (string, *Claims, error) {
	now := a.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign: %w", err)
	}
	return token, claims, nil
}

// Verify parses a session token. Expired, revoked, foreign or malformed
// tokens yield apperr.ErrUnauthorized.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject != a.email {
		return nil, apperr.ErrUnauthorized
	}
	if a.isRevoked(claims.ID) {
		return nil, fmt.Errorf("%w: signed out", apperr.ErrUnauthorized)
	}
	return claims, nil
}

// Revoke signs a session out before its token expires.
func (a *Authenticator) Revoke(c *Claims) {
	if c == nil {
		return
	}
	exp := a.now().Add(a.ttl)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	for sid, until := range a.revoked {
		if now.After(until) {
			delete(a.revoked, sid)
		}
	}
	a.revoked[c.ID] = exp
}

func (a *Authenticator) isRevoked(sid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.revoked[sid]
	return ok
}

// HashPassword returns the bcrypt hash stored in admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
