package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spa serves the single page app in dir.
//
// Paths naming an existing file are served as is, any other GET or HEAD gets
// dir/index.html so the app can handle its own routing. Other methods go to
// fallback.
func spa(dir string, fallback http.Handler) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			fallback.ServeHTTP(w, r)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		if _, err := os.Stat(index); err != nil {
			fallback.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, index)
	})
}
