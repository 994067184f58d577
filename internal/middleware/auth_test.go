package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/model"
)

const secret = "test-secret"

type stubSyncer struct {
	admins map[string]bool
	calls  []string
	names  []string
	err    error
}

func (s *stubSyncer) EnsureProfile(_ context.Context, id, email, fullName string) (*model.Profile, error) {
	s.calls = append(s.calls, id)
	s.names = append(s.names, fullName)
	if s.err != nil {
		return nil, s.err
	}
	return &model.Profile{ID: id, Email: model.StringPtr(email), FullName: model.StringPtr(fullName), IsAdmin: s.admins[id]}, nil
}

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func token(t *testing.T, sub, name, username string) string {
	return sign(t, &Claims{
		Email:             sub + "@crte.pr.gov.br",
		Name:              name,
		PreferredUsername: username,
		RegisteredClaims:  jwt.RegisteredClaims{Subject: sub},
	}, jwt.SigningMethodHS256, []byte(secret))
}

func newEngine(syncer ProfileSyncer, issuer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := Auth(secret, issuer, syncer, zap.NewNop())
	r.GET("/me", auth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentProfile(c).ID, "name": CurrentName(c)})
	})
	r.GET("/admin", auth, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	syncer := &stubSyncer{}
	r := newEngine(syncer, "")

	rec := do(r, "/me", token(t, "sub-1", "Ana Lima", "ana"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"sub-1","name":"Ana Lima"}`, rec.Body.String())
	assert.Equal(t, []string{"sub-1"}, syncer.calls)
}

func TestAuth_DisplayNameFallback(t *testing.T) {
	syncer := &stubSyncer{}
	r := newEngine(syncer, "")

	rec := do(r, "/me", token(t, "sub-1", "", "ana"))
	assert.JSONEq(t, `{"id":"sub-1","name":"ana"}`, rec.Body.String())

	rec = do(r, "/me", token(t, "sub-1", "", ""))
	assert.JSONEq(t, `{"id":"sub-1","name":"sub-1"}`, rec.Body.String())

	// full_name is synced with the same fallback.
	assert.Equal(t, []string{"ana", "sub-1"}, syncer.names)
}

func TestAuth_EmptySecretRejectsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	syncer := &stubSyncer{admins: map[string]bool{"boss": true}}
	r := gin.New()
	r.GET("/admin", Auth("", "", syncer, zap.NewNop()), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	forged := sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "boss"}}, jwt.SigningMethodHS256, []byte(""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", forged).Code)
	assert.Empty(t, syncer.calls)
}

func TestAuth_Rejects(t *testing.T) {
	syncer := &stubSyncer{}
	r := newEngine(syncer, "https://idp.crte")

	cases := map[string]string{
		"missing":      "",
		"garbage":      "abc.def.ghi",
		"wrong secret": sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "https://idp.crte"}}, jwt.SigningMethodHS256, []byte("other")),
		"wrong issuer": sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "https://evil"}}, jwt.SigningMethodHS256, []byte(secret)),
		"no subject":   sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "https://idp.crte"}}, jwt.SigningMethodHS256, []byte(secret)),
		"none alg":     sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "https://idp.crte"}}, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(r, "/me", tok)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, syncer.calls)
}

func TestAuth_ProfileSyncFailure(t *testing.T) {
	r := newEngine(&stubSyncer{err: errors.New("db down")}, "")
	rec := do(r, "/me", token(t, "sub-1", "Ana", ""))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(&stubSyncer{admins: map[string]bool{"boss": true}}, "")

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", token(t, "user", "U", "")).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", token(t, "boss", "B", "")).Code)
}

func TestMetricsAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/ping", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "/nope", "").Code)
}
