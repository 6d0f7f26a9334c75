package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "conecta/tools/errs"
	security "conecta/tools/security"
)

func authRouter(opts security.Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(opts), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return r
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	opts := security.DefaultOptions([]byte("test-secret"))
	token, _, err := security.Generate(opts, "42", "ana@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authRouter(opts).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["userId"])
}

func TestAuthRejectsMissingToken(t *testing.T) {
	opts := security.DefaultOptions([]byte("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	authRouter(opts).ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var ce errs.CodeError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ce))
	assert.Equal(t, errs.TokenMissingCode, ce.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	opts := security.DefaultOptions([]byte("test-secret"))
	forged, _, err := security.Generate(security.DefaultOptions([]byte("other")), "42", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	authRouter(opts).ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var ce errs.CodeError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ce))
	assert.Equal(t, errs.TokenInvalidCode, ce.Code)
}

func TestRoutesInjectAuthByOpt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes := NewRoutes(Auth(security.DefaultOptions([]byte("s"))))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	routes.GET(r, "/open", ok, RouteOpt{})
	routes.GET(r, "/locked", ok, RouteOpt{IsAuth: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locked", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
