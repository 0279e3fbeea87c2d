// Package web embeds the HTML views and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"
)

//go:embed views
var viewsFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout wraps every full page.
const Layout = "layouts/main"

// NewEngine returns the template engine over the embedded views.
func NewEngine(reload bool) *html.Engine {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.Reload(reload)
	return engine
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return static
}
