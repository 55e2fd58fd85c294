// Package web embeds the public verification page, the admin dashboard
// templates and their static assets.
package web

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Admin pages that are not rendered inside the layout.
const (
	AdminLayout = "admin/layout.html"
	AdminLogin  = "admin/login.html"
)

// GetTemplatesFS returns the embedded templates rooted at templates/
func GetTemplatesFS() fs.FS {
	return sub(templatesFS, "templates")
}

// GetStaticFS returns the embedded assets rooted at static/
func GetStaticFS() fs.FS {
	return sub(staticFS, "static")
}

// AdminPages lists the admin templates that render inside the layout, sorted.
func AdminPages() []string {
	matches, _ := fs.Glob(GetTemplatesFS(), "admin/*.html")
	var pages []string
	for _, m := range matches {
		if m == AdminLayout || m == AdminLogin {
			continue
		}
		pages = append(pages, path.Base(m))
	}
	sort.Strings(pages)
	return pages
}

func sub(fsys embed.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		// only reachable if the embed directives above change
		panic(err)
	}
	return s
}
