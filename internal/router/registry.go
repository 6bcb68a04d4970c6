package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, bootcamps, courses...) that mounts its
// routes on the versioned API group.
type Module interface {
	Register(api *gin.RouterGroup)
}

// ModuleFunc adapts a plain function to Module.
type ModuleFunc func(api *gin.RouterGroup)

func (f ModuleFunc) Register(api *gin.RouterGroup) { f(api) }

// Registry collects modules and mounts them under the API prefix.
// Middleware added with Use applies to every module's routes but not to
// routes registered on the engine directly.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := engine.Group(prefix)
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod ...Module) {
	r.modules = append(r.modules, mod...)
}

// RegisterAll mounts every module once; later calls are no-ops because gin
// panics on duplicate routes.
func (r *Registry) RegisterAll() {
	if r.mounted {
		return
	}
	r.mounted = true
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
