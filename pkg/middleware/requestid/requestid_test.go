package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, inbound string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(HeaderKey, inbound)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return seen, rec.Header().Get(HeaderKey)
}

func TestMiddlewareKeepsWellFormedID(t *testing.T) {
	seen, header := serve(t, "edge-7f3a.1")
	assert.Equal(t, "edge-7f3a.1", seen)
	assert.Equal(t, seen, header)
}

func TestMiddlewareReplacesMissingOrHostileID(t *testing.T) {
	for _, inbound := range []string{"", "bad id\nInjected: 1", strings.Repeat("a", 65)} {
		seen, header := serve(t, inbound)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, header)
	}
}
