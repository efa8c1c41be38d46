package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateRoundTrip(t *testing.T) {
	authority := NewSessionAuthority("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := authority.Issue(rec, "user-1", "0xabc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	claims := authority.ValidateToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "0xabc", claims.SuiAddress)
}

func TestValidateReadsCookie(t *testing.T) {
	authority := NewSessionAuthority("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := authority.Issue(rec, "user-1", "0xabc")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	claims := authority.Validate(req)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)

	bare := httptest.NewRequest(http.MethodGet, "/auth", nil)
	assert.Nil(t, authority.Validate(bare))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	minted := NewSessionAuthority("right-secret", time.Hour, false)
	rec := httptest.NewRecorder()
	token, err := minted.Issue(rec, "user-1", "0xabc")
	require.NoError(t, err)

	verifier := NewSessionAuthority("wrong-secret", time.Hour, false)
	assert.Nil(t, verifier.ValidateToken(token))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	authority := NewSessionAuthority("test-secret", -time.Minute, false)
	rec := httptest.NewRecorder()
	token, err := authority.Issue(rec, "user-1", "0xabc")
	require.NoError(t, err)

	assert.Nil(t, authority.ValidateToken(token))
}

func TestValidateRejectsGarbage(t *testing.T) {
	authority := NewSessionAuthority("test-secret", time.Hour, false)
	assert.Nil(t, authority.ValidateToken("not-a-token"))
	assert.Nil(t, authority.ValidateToken(""))
}

func TestRevokeClearsCookie(t *testing.T) {
	authority := NewSessionAuthority("test-secret", time.Hour, false)
	rec := httptest.NewRecorder()
	authority.Revoke(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
