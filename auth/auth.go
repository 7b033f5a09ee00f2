// Package auth implements the single demo account: a fixed credential
// check, the persisted session flag and HS256 session tokens.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Abhijadhav03/momentum/domain"
)

const (
	DemoEmail    = "intern@demo.com"
	DemoPassword = "intern123"

	// DefaultSessionTTL bounds the lifetime of issued tokens.
	DefaultSessionTTL = 24 * time.Hour
)

// DemoUser is the only account.
var DemoUser = domain.User{ID: "user-1", Email: DemoEmail, Name: "Intern User"}

var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Session is the persisted login state.
type Session struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Auth owns the session and signs and verifies its tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time

	mu      sync.RWMutex
	session Session
}

// New creates an Auth signing tokens with secret.
func New(secret []byte, ttl time.Duration) *Auth {
	if len(secret) == 0 {
		panic("auth.New: secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Auth{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:    time.Now,
	}
}

// Login checks the credentials and returns a signed token for the user.
func (a *Auth) Login(email, password string) (string, domain.User, error) {
	if strings.TrimSpace(email) != DemoEmail || password != DemoPassword {
		return "", domain.User{}, ErrInvalidCredentials
	}
	user := DemoUser
	token, err := a.issue(user.ID)
	if err != nil {
		return "", domain.User{}, err
	}

	a.mu.Lock()
	a.session = Session{User: &user, IsAuthenticated: true}
	a.mu.Unlock()
	return token, user, nil
}

// Logout clears the session. Outstanding tokens stop verifying.
func (a *Auth) Logout() {
	a.mu.Lock()
	a.session = Session{}
	a.mu.Unlock()
}

// Current returns the logged in user.
func (a *Auth) Current() (domain.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.session.IsAuthenticated || a.session.User == nil {
		return domain.User{}, false
	}
	return *a.session.User, true
}

// Snapshot returns the session for persistence.
func (a *Auth) Snapshot() Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Restore replaces the session. A flag without a user is not a login.
func (a *Auth) Restore(s Session) {
	if s.User == nil {
		s.IsAuthenticated = false
	} else {
		u := *s.User
		s.User = &u
	}
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *Auth) issue(sub string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// UserIDFromHeader validates the "Bearer <jwt>" Authorization header against
// the current session.
func (a *Auth) UserIDFromHeader(h http.Header) (string, error) {
	token, err := BearerTokenFromHeader(h)
	if err != nil {
		return "", err
	}
	return a.UserIDFromBearer(token)
}

// UserIDFromBearer validates a raw token against the current session.
func (a *Auth) UserIDFromBearer(token []byte) (string, error) {
	if len(token) == 0 {
		return "", ErrBadAuthorization
	}
	parsed, err := a.parser.Parse(readOnlyString(token), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return "", errors.New("token expired")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}

	user, ok := a.Current()
	if !ok || user.ID != sub {
		return "", ErrNotAuthenticated
	}
	return sub, nil
}
