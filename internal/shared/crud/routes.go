package crud

import (
	"github.com/gin-gonic/gin"
)

// CollectionHandler is the non-generic view of a *Collection.
type CollectionHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	CanCreate() bool
}

// MemberHandler is the non-generic view of a *Member.
type MemberHandler interface {
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	CanUpdate() bool
}

// Route is an extra endpoint mounted next to the CRUD routes.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	// Mutating routes, and any route marked Protected, go through the write guard.
	Protected bool
}

// Resource bundles the handlers served under one path.
type Resource struct {
	Path       string
	Collection CollectionHandler
	Member     MemberHandler
	Extra      []Route
}

// Register mounts the resource on rg. Reads are public; every write, and
// protected extra routes, run behind guard (session check).
func (r Resource) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	g := rg.Group(r.Path)

	// Extra routes first so static segments such as /review-names are explicit.
	for _, route := range r.Extra {
		if route.Protected || route.Method != "GET" {
			g.Handle(route.Method, route.Path, chain(guard, route.Handler)...)
			continue
		}
		g.Handle(route.Method, route.Path, route.Handler)
	}

	if r.Collection != nil {
		g.GET("", r.Collection.List)
		if r.Collection.CanCreate() {
			g.POST("", chain(guard, r.Collection.Create)...)
		}
	}
	if r.Member != nil {
		g.GET("/:id", r.Member.Get)
		if r.Member.CanUpdate() {
			g.PUT("/:id", chain(guard, r.Member.Update)...)
		}
		g.DELETE("/:id", chain(guard, r.Member.Delete)...)
	}
}

func chain(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guard)+1)
	out = append(out, guard...)
	return append(out, h)
}
