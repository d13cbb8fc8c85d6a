package webclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName  = "msk_visitor"
	tokenIssuer = "msktravels-webclient"
	cookiePath  = "/"
)

var ErrInvalidVisitorToken = errors.New("invalid visitor token")

type visitorClaims struct {
	jwt.RegisteredClaims
}

// VisitorTokens signs and verifies the visitor id cookie.
type VisitorTokens struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewVisitorTokens(secret string, ttl time.Duration, secure bool) *VisitorTokens {
	return &VisitorTokens{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func (t *VisitorTokens) Issue(visitorID string, now time.Time) (string, error) {
	claims := &visitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse returns the visitor id carried by a valid, unexpired token.
func (t *VisitorTokens) Parse(tokenString string) (string, error) {
	claims := &visitorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidVisitorToken, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a visitor id", ErrInvalidVisitorToken)
	}
	return claims.Subject, nil
}

func (t *VisitorTokens) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     cookiePath,
		MaxAge:   int(t.ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func newVisitorID() string {
	return uuid.NewString()
}
