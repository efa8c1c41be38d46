package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "session"

// SessionClaims is what a verified session token asserts about the caller.
type SessionClaims struct {
	UserID     string `json:"userId"`
	SuiAddress string `json:"suiAddress"`
	jwt.RegisteredClaims
}

// SessionAuthority mints and verifies the stateless session credential. An
// unverifiable token never grants access, but its absence never fails a
// request either: Validate returns nil instead of an error.
type SessionAuthority struct {
	secret     []byte
	ttl        time.Duration
	secureOnly bool
}

func NewSessionAuthority(secret string, ttl time.Duration, secureOnly bool) *SessionAuthority {
	return &SessionAuthority{secret: []byte(secret), ttl: ttl, secureOnly: secureOnly}
}

// Issue signs a session token for the user and sets it as an HTTP-only cookie.
func (s *SessionAuthority) Issue(w http.ResponseWriter, userID, suiAddress string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:     userID,
		SuiAddress: suiAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Validate returns the caller's session claims, or nil for any missing,
// malformed, mis-signed or expired token.
func (s *SessionAuthority) Validate(r *http.Request) *SessionClaims {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.ValidateToken(cookie.Value)
}

// ValidateToken verifies a raw token string. Nil on any failure.
func (s *SessionAuthority) ValidateToken(tokenStr string) *SessionClaims {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil
	}
	return claims
}

// Revoke clears the session cookie.
func (s *SessionAuthority) Revoke(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})
}
