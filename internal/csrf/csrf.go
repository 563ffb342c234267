// Package csrf issues and verifies per-form anti-forgery tokens.
//
// Tokens are HS256 JWTs whose subject is the form action. The signing key for
// each action is derived from the process secret with HKDF, so a token minted
// for one form never verifies against another even if the subject were forged.
package csrf

import (
	"crypto/sha256"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer    = "termcolor"
	keyLength = 32
)

var fieldTmpl = template.Must(template.New("nonce").Parse(
	`<input type="hidden" id="{{.Name}}" name="{{.Name}}" value="{{.Token}}" />`))

// Issuer mints and checks tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu   sync.RWMutex
	keys map[string][]byte
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// New constructs an Issuer for secret.
func New(secret string, opts ...Option) *Issuer {
	i := &Issuer{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
		now:    time.Now,
		keys:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type claims struct {
	jwt.RegisteredClaims
}

// Token mints a token bound to action.
func (i *Issuer) Token(action string) (string, error) {
	key, err := i.key(action)
	if err != nil {
		return "", err
	}
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   action,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign csrf token: %w", err)
	}
	return signed, nil
}

// Field returns a hidden input named name carrying a fresh token for action.
func (i *Issuer) Field(action, name string) (template.HTML, error) {
	token, err := i.Token(action)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := fieldTmpl.Execute(&buf, struct{ Name, Token string }{name, token}); err != nil {
		return "", fmt.Errorf("render csrf field: %w", err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}

// Verify reports whether token was issued for action and has not expired.
func (i *Issuer) Verify(token, action string) bool {
	if token == "" || action == "" {
		return false
	}
	key, err := i.key(action)
	if err != nil {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(action),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return false
	}
	return parsed.Valid
}

func (i *Issuer) key(action string) ([]byte, error) {
	i.mu.RLock()
	k, ok := i.keys[action]
	i.mu.RUnlock()
	if ok {
		return k, nil
	}

	k = make([]byte, keyLength)
	r := hkdf.New(sha256.New, i.secret, nil, []byte("csrf:"+action))
	if _, err := io.ReadFull(r, k); err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}

	i.mu.Lock()
	i.keys[action] = k
	i.mu.Unlock()
	return k, nil
}
