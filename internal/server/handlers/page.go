// internal/server/handlers/page.go

package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexPage []byte

// IndexPage serves the browser front end
func IndexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
