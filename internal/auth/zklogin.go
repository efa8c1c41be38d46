package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// IDTokenClaims are the verified claims we trust from a Google ID token.
type IDTokenClaims struct {
	Issuer  string
	Subject string
	Email   string
	Name    string
	Picture string
}

// ZkLoginVerifier verifies Google ID tokens against the provider's published
// keys. Claims are only trusted after signature, issuer, audience and expiry
// all check out.
type ZkLoginVerifier struct {
	clientID string
	jwks     keyfunc.Keyfunc
}

// NewZkLoginVerifier fetches Google's JWKS and keeps it refreshed in the
// background for the lifetime of ctx.
func NewZkLoginVerifier(ctx context.Context, clientID string) (*ZkLoginVerifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{googleJWKSURL})
	if err != nil {
		return nil, fmt.Errorf("fetch google jwks: %w", err)
	}
	return &ZkLoginVerifier{clientID: clientID, jwks: jwks}, nil
}

// Verify validates the ID token and returns its identity claims.
func (v *ZkLoginVerifier) Verify(idToken string) (*IDTokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("verify id token: token invalid")
	}

	iss, _ := claims["iss"].(string)
	validIssuer := false
	for _, allowed := range googleIssuers {
		if iss == allowed {
			validIssuer = true
			break
		}
	}
	if !validIssuer {
		return nil, fmt.Errorf("verify id token: unexpected issuer %q", iss)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("verify id token: missing subject")
	}

	out := &IDTokenClaims{Issuer: iss, Subject: sub}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	out.Picture, _ = claims["picture"].(string)
	return out, nil
}

// DeriveZkAddress computes the deterministic Sui address for a federated
// identity: sha256 over issuer, subject and the per-user salt, truncated to
// the 32-byte address format.
func DeriveZkAddress(issuer, subject, salt string) string {
	sum := sha256.Sum256([]byte(issuer + ":" + subject + ":" + salt))
	return "0x" + hex.EncodeToString(sum[:])[:64]
}

// FallbackSalt derives a deterministic local salt for when the salt service is
// unreachable. Same issuer+subject always maps to the same address.
func FallbackSalt(issuer, subject string) string {
	sum := sha256.Sum256([]byte(issuer + ":" + subject))
	return hex.EncodeToString(sum[:])[:32]
}

// DecodeUnverified extracts iss/sub from a token payload without verifying it.
// Only used to compute the fallback salt after the token has already been
// verified by ZkLoginVerifier.
func DecodeUnverified(idToken string) (issuer, subject string, err error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return "", "", errors.New("malformed jwt")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("decode jwt payload: %w", err)
	}
	var claims struct {
		Iss string `json:"iss"`
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", "", fmt.Errorf("parse jwt payload: %w", err)
	}
	return claims.Iss, claims.Sub, nil
}

// ZkLoginSession carries the nonce material handed to the OAuth flow.
type ZkLoginSession struct {
	Nonce      string `json:"nonce"`
	MaxEpoch   int64  `json:"maxEpoch"`
	Randomness string `json:"randomness"`
}

// NewZkLoginSession generates fresh nonce material for an OAuth round trip.
func NewZkLoginSession(nowUnix int64) (*ZkLoginSession, error) {
	randomness, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	nonce, err := randomHex(20)
	if err != nil {
		return nil, err
	}
	return &ZkLoginSession{
		Nonce:      nonce,
		MaxEpoch:   nowUnix/86400 + 30,
		Randomness: randomness,
	}, nil
}

// GoogleAuthURL builds the consent URL that posts an ID token back to the
// callback endpoint.
func GoogleAuthURL(clientID, nonce, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "id_token")
	params.Set("scope", "openid email profile")
	params.Set("nonce", nonce)
	params.Set("response_mode", "form_post")
	return "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode()
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
