package middleware

import (
	"github.com/gin-gonic/gin"
)

type RouteOpt struct {
	IsAuth bool
}

// Routes wraps route registration so protected endpoints declare
// IsAuth instead of repeating the middleware chain.
type Routes struct {
	auth gin.HandlerFunc
}

func NewRoutes(auth gin.HandlerFunc) *Routes {
	return &Routes{auth: auth}
}

func (r *Routes) GET(g gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		g.GET(path, r.auth, handler)
		return
	}
	g.GET(path, handler)
}

func (r *Routes) POST(g gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		g.POST(path, r.auth, handler)
		return
	}
	g.POST(path, handler)
}
