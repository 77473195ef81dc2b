package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	sessionCookie = "admin_session"
	tokenIssuer   = "promo-bot"
	tokenAudience = "promo-bot-admin"
	adminRole     = "admin"
	clockSkew     = 5 * time.Second
)

var (
	errMissingToken = errors.New("missing token")
	errWrongRole    = errors.New("token is not an admin session")
)

// AdminClaims is the payload of an admin session token. ID is a ULID that
// identifies the session in logs.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthManager issues and checks HS256 session tokens, sent either as a bearer
// header or as an HttpOnly cookie.
type AuthManager struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{secret: []byte(secret), secure: secure, ttl: ttl, now: time.Now}
}

// Mint signs a fresh session token and stores it in the session cookie.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	issued := a.now()
	claims := AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   adminRole,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	a.writeCookie(w, signed, a.ttl)
	return signed, nil
}

// Clear expires the session cookie in the browser.
func (a *AuthManager) Clear(w http.ResponseWriter) { a.writeCookie(w, "", -1) }

func (a *AuthManager) writeCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl / time.Second)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ParseFromRequest prefers the Authorization header and falls back to the
// cookie. A header with any scheme but Bearer is rejected outright.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	raw, err := tokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return a.verify(raw)
}

func tokenFromRequest(r *http.Request) (string, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		scheme, tok, ok := strings.Cut(hdr, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tok) == "" {
			return "", errMissingToken
		}
		return strings.TrimSpace(tok), nil
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errMissingToken
}

func (a *AuthManager) verify(raw string) (*AdminClaims, error) {
	claims := new(AdminClaims)
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if claims.Role != adminRole {
		return nil, errWrongRole
	}
	return claims, nil
}
