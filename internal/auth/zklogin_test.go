package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressShape = regexp.MustCompile(`^0x[a-f0-9]{64}$`)

func TestDeriveZkAddress(t *testing.T) {
	a := DeriveZkAddress("https://accounts.google.com", "1234567890", "salt-a")
	assert.Regexp(t, addressShape, a)

	// Deterministic for the same identity and salt.
	assert.Equal(t, a, DeriveZkAddress("https://accounts.google.com", "1234567890", "salt-a"))

	// Any input change moves the address.
	assert.NotEqual(t, a, DeriveZkAddress("https://accounts.google.com", "1234567890", "salt-b"))
	assert.NotEqual(t, a, DeriveZkAddress("https://accounts.google.com", "9999999999", "salt-a"))
	assert.NotEqual(t, a, DeriveZkAddress("accounts.google.com", "1234567890", "salt-a"))
}

func TestFallbackSalt(t *testing.T) {
	s := FallbackSalt("https://accounts.google.com", "1234567890")
	assert.Len(t, s, 32)
	assert.Equal(t, s, FallbackSalt("https://accounts.google.com", "1234567890"))
	assert.NotEqual(t, s, FallbackSalt("https://accounts.google.com", "other"))
}

func makeUnsignedJWT(t *testing.T, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + "." + enc([]byte("sig"))
}

func TestDecodeUnverified(t *testing.T) {
	token := makeUnsignedJWT(t, `{"iss":"https://accounts.google.com","sub":"42"}`)
	iss, sub, err := DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.google.com", iss)
	assert.Equal(t, "42", sub)

	_, _, err = DecodeUnverified("only.two")
	assert.Error(t, err)
	_, _, err = DecodeUnverified("a.%%%.c")
	assert.Error(t, err)
}

func TestNewZkLoginSession(t *testing.T) {
	const nowUnix = int64(1_750_000_000)
	session, err := NewZkLoginSession(nowUnix)
	require.NoError(t, err)

	assert.Equal(t, nowUnix/86400+30, session.MaxEpoch)
	assert.Len(t, session.Nonce, 40)
	assert.Len(t, session.Randomness, 32)

	other, err := NewZkLoginSession(nowUnix)
	require.NoError(t, err)
	assert.NotEqual(t, session.Nonce, other.Nonce)
}

func TestGoogleAuthURL(t *testing.T) {
	raw := GoogleAuthURL("client-123", "nonce-abc", "https://app.example.com/auth/callback")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "nonce-abc", q.Get("nonce"))
	assert.Equal(t, "id_token", q.Get("response_type"))
	assert.Equal(t, "form_post", q.Get("response_mode"))
	assert.Equal(t, "https://app.example.com/auth/callback", q.Get("redirect_uri"))
}

func TestSaltClientUsesService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"salt":"service-salt"}`))
	}))
	defer srv.Close()

	client := NewSaltClient(srv.URL, discardLogger())
	token := makeUnsignedJWT(t, `{"iss":"https://accounts.google.com","sub":"42"}`)

	salt, err := client.GetSalt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "service-salt", salt)
}

func TestSaltClientFallsBackWhenServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSaltClient(srv.URL, discardLogger())
	token := makeUnsignedJWT(t, `{"iss":"https://accounts.google.com","sub":"42"}`)

	salt, err := client.GetSalt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, FallbackSalt("https://accounts.google.com", "42"), salt)
}

func TestSaltClientFallbackNeedsDecodableToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSaltClient(srv.URL, discardLogger())
	_, err := client.GetSalt(context.Background(), "garbage")
	assert.Error(t, err)
}
