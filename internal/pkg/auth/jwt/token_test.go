package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Issuer_Roundtrip(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.Issue("user-1", "alice")
	req.NoError(err)
	req.WithinDuration(time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	payload, err := issuer.Parse(token)
	req.NoError(err)
	req.Equal("user-1", payload.ID)
	req.Equal("alice", payload.Username)
	req.Equal(TokenIssuer, payload.Issuer)
}

func Test_Parse_Rejects_Foreign_And_Expired_Tokens(t *testing.T) {
	token, _, err := NewIssuer("secret", time.Hour).Issue("user-1", "alice")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(token)
	assert.Error(t, err)

	expired, err := GenerateToken(&Payload{ID: "user-1"}, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.Error(t, err)

	_, err = ParseToken("not-a-token", "secret")
	assert.Error(t, err)
}

func Test_NewIssuer_Defaults_TTL(t *testing.T) {
	assert.Equal(t, SessionExpiration, NewIssuer("secret", 0).TTL)
}

func Test_TokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(r))
}

func Test_Middleware(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	token, _, err := issuer.Issue("user-1", "alice")
	require.NoError(t, err)

	var seen *Payload
	handler := IdentityExtractorMiddleware("secret")(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.Username)
}
