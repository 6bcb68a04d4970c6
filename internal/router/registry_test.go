package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_MountsModulesOnceUnderPrefix(t *testing.T) {
	engine := gin.New()
	reg := NewRegistry(engine, "")
	reg.Use(func(c *gin.Context) {
		c.Header("X-Module", "yes")
		c.Next()
	})
	mounts := 0
	reg.Add(ModuleFunc(func(api *gin.RouterGroup) {
		mounts++
		api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	}))

	assert.NotPanics(t, func() {
		reg.RegisterAll()
		reg.RegisterAll()
	})
	assert.Equal(t, 1, mounts)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Module"))
}
