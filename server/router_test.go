package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"benchly/server"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

// stub answers every route with its own name.
type stub struct{}

func named(c *gin.Context, name string) { c.String(http.StatusOK, name) }

func (stub) Login(c *gin.Context)           { named(c, "login") }
func (stub) Register(c *gin.Context)        { named(c, "register") }
func (stub) Search(c *gin.Context)          { named(c, "search") }
func (stub) Summary(c *gin.Context)         { named(c, "summary") }
func (stub) RelatedKeywords(c *gin.Context) { named(c, "keywords") }
func (stub) Save(c *gin.Context)            { named(c, "save") }
func (stub) List(c *gin.Context)            { named(c, "list") }
func (stub) Get(c *gin.Context)             { named(c, "get:"+c.Param("id")) }
func (stub) Delete(c *gin.Context)          { named(c, "delete:"+c.Param("id")) }
func (stub) Healthz(c *gin.Context)         { named(c, "healthz") }
func (stub) Readyz(c *gin.Context)          { named(c, "readyz") }

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	s := stub{}
	return server.InitiateRouter(server.Handlers{
		User: s, Discovery: s, Project: s, Text: s, Health: s,
	}, server.RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Auth: func(c *gin.Context) {
			if c.GetHeader("Authorization") == "" {
				c.AbortWithStatus(http.StatusUnauthorized)
			}
		},
		Gatherer: prometheus.NewRegistry(),
	})
}

func TestRouter(t *testing.T) {
	router := newRouter()

	tests := []struct {
		method string
		path   string
		authed bool
		status int
		body   string
	}{
		{http.MethodGet, "/healthz", false, http.StatusOK, "healthz"},
		{http.MethodGet, "/readyz", false, http.StatusOK, "readyz"},
		{http.MethodPost, "/api/login", false, http.StatusOK, "login"},
		{http.MethodPost, "/api/register", false, http.StatusOK, "register"},
		{http.MethodPost, "/api/search", false, http.StatusUnauthorized, ""},
		{http.MethodPost, "/api/search", true, http.StatusOK, "search"},
		{http.MethodPost, "/api/get_summary", true, http.StatusOK, "summary"},
		{http.MethodPost, "/api/get_related_keywords", true, http.StatusOK, "keywords"},
		{http.MethodPost, "/api/project/save", true, http.StatusOK, "save"},
		{http.MethodGet, "/api/projects", true, http.StatusOK, "list"},
		{http.MethodGet, "/api/project/get/7", true, http.StatusOK, "get:7"},
		{http.MethodDelete, "/api/project/delete/7", true, http.StatusOK, "delete:7"},
		{http.MethodDelete, "/api/projects", true, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authed {
				req.Header.Set("Authorization", "Bearer x")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}
