package httpx

import (
	"net/http"
	"time"
)

// HiResponse echoes the caller's name with the server time.
type HiResponse struct {
	Hello string    `json:"hello"`
	Date  time.Time `json:"date"`
} // @name HiResponse

// HiHandler is a trivial liveness echo: GET /hi?name=me returns the name and
// the current server time. Useful for smoke-testing a fresh deployment.
func HiHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "world"
		}
		JSON(w, http.StatusOK, HiResponse{Hello: name, Date: time.Now().UTC()})
	}
}
