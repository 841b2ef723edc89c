package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(key []byte, header string) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	var user string
	e.GET("/x", func(c echo.Context) error {
		user, _ = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	}, JWT(key))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, user
}

func TestIssuedTokenAccepted(t *testing.T) {
	key := []byte("secret")
	tok, err := IssueToken(key, "mike", time.Hour)
	require.NoError(t, err)

	rec, user := serve(key, tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mike", user)

	rec, _ = serve(key, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRejectedTokens(t *testing.T) {
	key := []byte("secret")
	tok, err := IssueToken([]byte("other"), "mike", time.Hour)
	require.NoError(t, err)
	rec, _ := serve(key, tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken(key, "mike", -time.Minute)
	require.NoError(t, err)
	rec, _ = serve(key, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(key, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(key, "not-a-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err = IssueToken(key, " ", time.Hour)
	assert.Error(t, err)
}

func TestUserHashNormalizes(t *testing.T) {
	key := []byte("k")
	assert.Equal(t, UserHashFromUsername("Mike ", key), UserHashFromUsername("mike", key))
	assert.NotEqual(t, UserHashFromUsername("mike", key), UserHashFromUsername("mike", []byte("j")))
}
