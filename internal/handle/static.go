package handle

import (
	"net/http"
	"path/filepath"
)

// StaticPage serves one file from the static directory. The root page gets
// an exact-path guard so unknown paths still 404 instead of falling through
// to index.html.
func StaticPage(dir, file string, exactPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exactPath != "" && r.URL.Path != exactPath {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, file))
	}
}
