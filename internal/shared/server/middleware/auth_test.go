package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"orgId": OrgIDFromContext(c)})
	}
	router.GET("/api/v1/devices", handler)
	router.OPTIONS("/api/v1/devices", handler)
	router.GET("/api/v1/health", handler)
	router.GET("/api/v1/metrics", handler)
	router.POST("/api/v1/pdf/callback", handler)
	return router
}

func TestAuthRequiresTenantHeader(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthStoresTenantFromHeader(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	req.Header.Set("X-Org-Id", "org-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"orgId":"org-42"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthExemptPaths(t *testing.T) {
	router := newAuthRouter()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/health"},
		{http.MethodGet, "/api/v1/metrics"},
		{http.MethodPost, "/api/v1/pdf/callback"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Errorf("%s %s: expected 200 without identity, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/devices", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}
